package services

import (
	"context"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/catalog"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/feedback"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// PlanService owns the plan fallback ladder: provider, then catalog
// candidates, then the static list. Generate never returns an error; a
// session always starts with a full plan.
type PlanService struct {
	provider feedback.Provider
	catalog  *catalog.Catalog
	length   int
	log      *logger.Logger
}

func NewPlanService(provider feedback.Provider, cat *catalog.Catalog, length int, log *logger.Logger) *PlanService {
	if length <= 0 {
		length = 10
	}
	return &PlanService{
		provider: provider,
		catalog:  cat,
		length:   length,
		log:      log.With("service", "plan"),
	}
}

func (s *PlanService) Length() int { return s.length }

func (s *PlanService) Generate(ctx context.Context, role string, profileSnapshot string) domain.Plan {
	seed := feedback.RandomSeed()

	plan, err := s.provider.GeneratePlan(ctx, role, profileSnapshot, s.length, seed)
	if err == nil {
		return plan
	}
	s.log.Warn("provider plan failed, falling back to catalog", "role", role, "error", err)

	if plan, ok := s.fromCatalog(ctx, role, seed); ok {
		return plan
	}
	s.log.Warn("catalog has no questions for role, using static plan", "role", role)

	return feedback.StaticPlan(role, s.length, seed)
}

// fromCatalog normalizes catalog candidates into plan questions. Candidates
// missing intent or guides get defaults, then a best-effort provider pass
// fills them in properly.
func (s *PlanService) fromCatalog(ctx context.Context, role string, seed int64) (domain.Plan, bool) {
	if s.catalog == nil {
		return domain.Plan{}, false
	}
	cands := s.catalog.ForRole(role)
	if len(cands) == 0 {
		return domain.Plan{}, false
	}

	plan := domain.Plan{JobRole: role, Seed: seed}
	for i := 0; i < s.length; i++ {
		cand := cands[i%len(cands)]
		q := domain.Question{
			Index:  i,
			Type:   cand.QuestionType(),
			Text:   cand.Text,
			Intent: cand.Intent,
			Guides: cand.Guides,
		}
		if q.Intent == "" || len(q.Guides) < 3 {
			s.enrich(ctx, &q, role)
		}
		plan.Questions = append(plan.Questions, q)
	}
	return plan, true
}

func (s *PlanService) enrich(ctx context.Context, q *domain.Question, role string) {
	intent, guides, err := s.provider.QuestionIntentAndGuides(ctx, q.Type, q.Text, role)
	if err == nil {
		q.Intent = intent
		q.Guides = guides
		return
	}
	s.log.Debug("question enrichment failed, using defaults", "index", q.Index, "error", err)
	if q.Intent == "" {
		q.Intent = "Assess how clearly the candidate reasons through the question."
	}
	for len(q.Guides) < 3 {
		q.Guides = append(q.Guides, "Gives a concrete, first-person example")
	}
}
