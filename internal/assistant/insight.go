package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/auditguard/auditguard/internal/domain"
)

const insightPersona = "You are an expert Audit assistant. Provide concise, risk-focused answers."

// Generator produces a text answer. *Gemini implements it.
type Generator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Insight answers free-text questions about a ledger.
type Insight struct {
	gen Generator
	log zerolog.Logger
}

// NewInsight returns an Insight backed by gen. A nil gen yields an Insight
// that always reports ErrAssistantUnavailable.
func NewInsight(gen Generator, log zerolog.Logger) *Insight {
	return &Insight{gen: gen, log: log.With().Str("component", "assistant").Logger()}
}

func (i *Insight) Enabled() bool {
	return i != nil && i.gen != nil
}

// Ask sends question to the model with the ledger digest as context.
func (i *Insight) Ask(ctx context.Context, question string, summary domain.AuditSummary, entries []domain.LedgerEntry) (string, error) {
	if !i.Enabled() {
		return "", domain.ErrAssistantUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty")
	}

	prompt := fmt.Sprintf("Context: %s\n\nUser Question: %s", BuildSystemInstruction(summary, entries), question)
	answer, err := i.gen.GenerateText(ctx, insightPersona, prompt)
	if err != nil {
		i.log.Error().Err(err).Msg("insight generation failed")
		return "", fmt.Errorf("generate insight: %w", err)
	}
	return answer, nil
}
