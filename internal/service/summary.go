package service

import (
	"context"
	"time"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"
)

const narrativeSystemPrompt = "Você é um assistente clínico que apoia psicólogos na leitura de questionários semanais."

// Completer is the generative model behind the weekly narrative.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// SummaryAssembler turns weekly scores and the patient's reflection into the
// narrative shown to the psychologist.
type SummaryAssembler struct {
	ai      Completer
	timeout time.Duration
}

func NewSummaryAssembler(ai Completer, timeout time.Duration) *SummaryAssembler {
	return &SummaryAssembler{ai: ai, timeout: timeout}
}

// BuildNarrative makes a single bounded AI attempt and falls back to the
// deterministic narrative on any failure. It always returns non-empty text
// and the source it came from.
func (a *SummaryAssembler) BuildNarrative(ctx context.Context, scores map[string]questionnaire.ScoreSummary, textoResumo, textoExpectativa string) (string, string) {
	if a.ai == nil {
		return questionnaire.FallbackNarrative(scores), model.NarrativeFallback
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	prompt := questionnaire.BuildPrompt(scores, textoResumo, textoExpectativa)
	text, err := a.ai.Complete(ctx, narrativeSystemPrompt, prompt)
	if err != nil {
		logger.Ctx(ctx).Warn("summary.fallback", "err", err)
		return questionnaire.FallbackNarrative(scores), model.NarrativeFallback
	}
	return text, model.NarrativeAI
}
