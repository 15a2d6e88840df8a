// Package catalog holds the static pool of role-tagged candidate questions
// used when AI plan generation fails.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

// Candidate is one catalog question. Intent and guides are optional; the
// plan generator defaults them when absent.
type Candidate struct {
	Type   string   `yaml:"type"`
	Text   string   `yaml:"text"`
	Intent string   `yaml:"intent,omitempty"`
	Guides []string `yaml:"guides,omitempty"`
}

type roleEntry struct {
	Role      string      `yaml:"role"`
	Questions []Candidate `yaml:"questions"`
}

type catalogFile struct {
	Roles []roleEntry `yaml:"roles"`
}

type Catalog struct {
	byRole map[string][]Candidate
}

// Load reads the catalog YAML at path. A missing or unreadable file yields
// an empty catalog rather than an error: the plan generator has a further
// static fallback behind it.
func Load(path string) (*Catalog, error) {
	c := &Catalog{byRole: map[string][]Candidate{}}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read catalog %q: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return c, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	for _, entry := range f.Roles {
		role := normalizeRole(entry.Role)
		if role == "" {
			continue
		}
		c.byRole[role] = append(c.byRole[role], entry.Questions...)
	}
	return c, nil
}

// ForRole returns the candidates for role, falling back to the "general"
// pool for unknown roles.
func (c *Catalog) ForRole(role string) []Candidate {
	if c == nil {
		return nil
	}
	if qs, ok := c.byRole[normalizeRole(role)]; ok && len(qs) > 0 {
		return qs
	}
	return c.byRole["general"]
}

func (c *Catalog) Roles() []string {
	out := make([]string, 0, len(c.byRole))
	for role := range c.byRole {
		out = append(out, role)
	}
	return out
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(role, " ", "_")))
}

// QuestionType maps a catalog type tag onto the plan's domain type,
// defaulting to technical for unknown tags.
func (cand Candidate) QuestionType() domain.QuestionType {
	switch strings.ToLower(strings.TrimSpace(cand.Type)) {
	case string(domain.QuestionWarmUp):
		return domain.QuestionWarmUp
	case string(domain.QuestionDesign):
		return domain.QuestionDesign
	case string(domain.QuestionTroubleshoot):
		return domain.QuestionTroubleshoot
	case string(domain.QuestionWrapUp):
		return domain.QuestionWrapUp
	default:
		return domain.QuestionTechnical
	}
}
