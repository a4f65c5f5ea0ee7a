package questionnaire

import (
	"fmt"
	"strings"
)

const closingParagraph = "Recomenda-se acompanhar a evolução dos indicadores nas próximas semanas " +
	"e discutir com o(a) paciente os pontos trazidos no resumo semanal durante a próxima sessão."

const noScoresParagraph = "Nenhum questionário foi respondido na última semana, " +
	"portanto não há pontuações para analisar neste período."

const promptInstructions = `Você é um assistente de apoio a psicólogos clínicos.
Com base nas pontuações e nos relatos acima, escreva em português do Brasil uma análise
empática e objetiva destinada ao psicólogo responsável. Destaque tendências, possíveis
pontos de atenção e sugestões de temas para a próxima sessão. Não faça diagnósticos
e não se dirija diretamente ao paciente.`

// trend compares the latest score with the bucket mean.
func trend(s ScoreSummary) string {
	if s.Current > s.Mean {
		return "melhora"
	}
	return "piora"
}

// FallbackNarrative renders the deterministic weekly analysis. It never
// returns an empty string.
func FallbackNarrative(scores map[string]ScoreSummary) string {
	var sb strings.Builder
	if len(scores) == 0 {
		sb.WriteString(noScoresParagraph)
		sb.WriteString("\n\n")
	}
	for _, id := range SortedIDs(scores) {
		s := scores[id]
		fmt.Fprintf(&sb, "%s: pontuação atual de %d/%d", s.Title, s.Current, s.MaxPossible)
		if s.SeverityLabel != NoSeverity {
			fmt.Fprintf(&sb, ", classificada como %s", s.SeverityLabel)
		}
		fmt.Fprintf(&sb, ". Em relação à média da semana (%d), a tendência indica %s.\n\n", s.Mean, trend(s))
	}
	sb.WriteString(closingParagraph)
	return sb.String()
}

// BuildPrompt assembles the text sent to the generative model.
func BuildPrompt(scores map[string]ScoreSummary, textoResumo, textoExpectativa string) string {
	var sb strings.Builder
	sb.WriteString("Pontuações da última semana:\n")
	if len(scores) == 0 {
		sb.WriteString("- Nenhum questionário respondido.\n")
	}
	for _, id := range SortedIDs(scores) {
		s := scores[id]
		fmt.Fprintf(&sb, "- %s: %d/%d (%s), média %d, variação %d-%d\n",
			s.Title, s.Current, s.MaxPossible, s.SeverityLabel, s.Mean, s.Min, s.Max)
	}
	sb.WriteString("\nResumo da semana escrito pelo paciente:\n")
	sb.WriteString(orNone(textoResumo))
	sb.WriteString("\n\nExpectativas do paciente para a próxima semana:\n")
	sb.WriteString(orNone(textoExpectativa))
	sb.WriteString("\n\n")
	sb.WriteString(promptInstructions)
	return sb.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(não informado)"
	}
	return strings.TrimSpace(s)
}
