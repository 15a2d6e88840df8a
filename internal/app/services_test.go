package app

import (
	"context"
	"errors"
	"testing"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/clients/gemini"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// stubOpenAI and stubGemini satisfy the client interfaces without any
// network surface; wiring tests only care whether a client is present.
type stubOpenAI struct{}

func (stubOpenAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("not wired")
}

func (stubOpenAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, errors.New("not wired")
}

func (stubOpenAI) CreateConversation(ctx context.Context) (string, error) {
	return "", errors.New("not wired")
}

func (stubOpenAI) GenerateTextInConversation(ctx context.Context, conversationID, instructions, user string) (string, error) {
	return "", errors.New("not wired")
}

func (stubOpenAI) GenerateJSONInConversation(ctx context.Context, conversationID, instructions, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, errors.New("not wired")
}

type stubGemini struct{}

func (stubGemini) GenerateText(ctx context.Context, system string, history []gemini.Message, user string) (string, error) {
	return "", errors.New("not wired")
}

func (stubGemini) GenerateJSON(ctx context.Context, system string, history []gemini.Message, user string) (map[string]any, error) {
	return nil, errors.New("not wired")
}

func wiringLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestWireServicesRequiresAIClient(t *testing.T) {
	_, err := wireServices(nil, wiringLogger(t), Config{FeedbackProvider: "openai"}, Repos{}, Clients{})
	if err == nil {
		t.Fatal("want error when no AI client is configured")
	}
}

func TestWireServicesSingleBackendBecomesPrimary(t *testing.T) {
	// Only Gemini is configured while the selection says openai: the
	// configured backend must become the primary with no secondary leg.
	svcs, err := wireServices(nil, wiringLogger(t), Config{FeedbackProvider: "openai"}, Repos{}, Clients{Gemini: stubGemini{}})
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	if got := svcs.Provider.Name(); got != "failover(gemini)" {
		t.Fatalf("provider = %q, want failover(gemini)", got)
	}
}

func TestWireServicesSelectsConfiguredPrimary(t *testing.T) {
	svcs, err := wireServices(nil, wiringLogger(t), Config{FeedbackProvider: "gemini"}, Repos{}, Clients{OpenAI: stubOpenAI{}, Gemini: stubGemini{}})
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	if got := svcs.Provider.Name(); got != "failover(gemini)" {
		t.Fatalf("provider = %q, want failover(gemini)", got)
	}
}
