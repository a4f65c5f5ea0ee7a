package main

import (
	"context"

	"psi-tracker/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// knowledge teaches the NL2SQL assistant the clinical vocabulary used by
// psychologists when they query the mirror tables.
var knowledge = []sdk.NL2SQLKnowledgeCreateRequest{
	{Type: "glossary", Key: "PHQ-9", Value: []string{"questionário de depressão, questionnaire_id = 'questionario1', pontuação de 0 a 27"}},
	{Type: "glossary", Key: "GAD-7", Value: []string{"questionário de ansiedade, questionnaire_id = 'questionario2', pontuação de 0 a 21"}},
	{Type: "glossary", Key: "diário de humor", Value: []string{"questionnaire_id = 'questionario3', nota de humor de 1 a 5 em score"}},
	{Type: "glossary", Key: "resumo semanal", Value: []string{"registro em weekly_summaries escrito pelo paciente ao fim da semana"}},

	{Type: "synonyms", Key: "depressão/humor deprimido", Value: []string{"pontuação do PHQ-9"}, AssociateTables: []string{"daily_responses,score"}},
	{Type: "synonyms", Key: "ansiedade/preocupação", Value: []string{"pontuação do GAD-7"}, AssociateTables: []string{"daily_responses,score"}},
	{Type: "synonyms", Key: "gravidade/nível/classificação", Value: []string{"faixa de gravidade da pontuação"}, AssociateTables: []string{"daily_responses,severity"}},
	{Type: "synonyms", Key: "análise/parecer", Value: []string{"narrativa gerada para o psicólogo"}, AssociateTables: []string{"weekly_summaries,narrative"}},

	{Type: "logic", Key: "a semana de um resumo são os 7 dias até week_end, inclusive", Value: []string{"response_date BETWEEN DATE_SUB(week_end, INTERVAL 7 DAY) AND week_end"}},
	{Type: "logic", Key: "severity = 'N/A' indica questionário sem faixas de gravidade", Value: []string{"filtrar severity != 'N/A' em perguntas sobre gravidade"}},

	{Type: "case_library", Key: "quais pacientes tiveram PHQ-9 grave na última semana", Value: []string{"SELECT DISTINCT patient_id FROM daily_responses WHERE questionnaire_id = 'questionario1' AND severity = 'Grave' AND response_date >= DATE_SUB(CURDATE(), INTERVAL 7 DAY)"}},
	{Type: "case_library", Key: "média do GAD-7 por paciente no último mês", Value: []string{"SELECT patient_id, AVG(score) FROM daily_responses WHERE questionnaire_id = 'questionario2' AND response_date >= DATE_SUB(CURDATE(), INTERVAL 30 DAY) GROUP BY patient_id"}},
	{Type: "case_library", Key: "quantos resumos semanais usaram a análise padrão", Value: []string{"SELECT COUNT(*) FROM weekly_summaries WHERE narrative_source = 'padrao'"}},
}

func initKnowledge(ctx context.Context, client *sdk.RawClient) error {
	for _, k := range knowledge {
		resp, err := client.CreateKnowledge(ctx, &k)
		if err != nil {
			if isDuplicate(err) {
				logger.Info("knowledge: already exists, skipping", "type", k.Type, "key", k.Key)
				continue
			}
			return err
		}
		logger.Info("knowledge: created", "type", k.Type, "key", k.Key, "id", resp.ID)
	}
	return nil
}
