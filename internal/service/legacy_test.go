package service

import (
	"encoding/json"
	"testing"

	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAndImportLegacy(t *testing.T) {
	f := newFixture(t, nil)
	m := &recordingMirror{}
	f.daily.SetMirror(m)
	_, err := f.daily.Record(f.ctx, f.patient.ID, "2026-10-06", questionnaire.PHQ9, []byte(phqAnswers))
	require.NoError(t, err)
	m.responses = nil

	rows := []model.LegacyRow{
		{PatientName: "bruno", Date: "2026-10-01", Answers: json.RawMessage(`[3,3,3,3,3,3,3,3,3]`)},
		{PatientID: f.patient.ID, Date: "2026-10-02", Answers: json.RawMessage(`[1,1,1,1,1,1,1]`)},
		{PatientID: f.patient.ID, Date: "2026-10-03", Answers: json.RawMessage(`{"nota_humor":2}`)},
		{PatientID: f.patient.ID, Date: "2026-10-04", Answers: json.RawMessage(`[1,2,3]`)},
		{PatientName: "Desconhecido", Date: "2026-10-05", Answers: json.RawMessage(`[0,0,0,0,0,0,0]`)},
		{PatientID: f.patient.ID, Date: "05/10/2026", Answers: json.RawMessage(`[0,0,0,0,0,0,0]`)},
		{PatientID: f.patient.ID, Date: "2026-10-06", Answers: json.RawMessage(`[0,0,0,0,0,0,0,0,0]`)},
		{PatientID: f.patient.ID, Date: "2026-10-07", QuestionnaireID: questionnaire.GAD7, Answers: json.RawMessage(`{"q1":1}`)},
		{PatientID: f.patient.ID, Date: "2026-10-08", Answers: json.RawMessage(`"x"`)},
	}

	preview, err := f.legacy.ClassifyLegacy(f.ctx, f.psy.ID, rows)
	require.NoError(t, err)
	require.Len(t, preview, len(rows))

	want := []struct {
		status, id string
		score      int
	}{
		{ImportOK, questionnaire.PHQ9, 27},
		{ImportOK, questionnaire.GAD7, 7},
		{ImportOK, questionnaire.MoodDiary, 2},
		{ImportUnclassified, "", 0},
		{ImportUnknownPatient, "", 0},
		{ImportInvalidDate, "", 0},
		{ImportOK, questionnaire.PHQ9, 0},
		{ImportInvalidAnswers, "", 0},
		{ImportInvalidAnswers, "", 0},
	}
	for i, w := range want {
		assert.Equal(t, w.status, preview[i].Status, "line %d", i+1)
		assert.Equal(t, w.id, preview[i].QuestionnaireID, "line %d", i+1)
		assert.Equal(t, w.score, preview[i].Score, "line %d", i+1)
	}
	assert.Equal(t, f.patient.ID, preview[0].PatientID)
	assert.Equal(t, "Bruno", preview[0].PatientName)

	res, err := f.legacy.ImportLegacy(f.ctx, preview)
	require.NoError(t, err)
	assert.Equal(t, model.ImportResult{Imported: 3, Duplicates: 1, Skipped: 5, Total: 9}, *res)
	assert.Len(t, m.responses, 3)

	stored, err := f.daily.FindOne(f.ctx, f.patient.ID, "2026-10-02")
	require.NoError(t, err)
	assert.Equal(t, questionnaire.GAD7, stored.QuestionnaireID)
	assert.Equal(t, model.SourceImport, stored.Source)

	kept, err := f.daily.FindOne(f.ctx, f.patient.ID, "2026-10-06")
	require.NoError(t, err)
	assert.Equal(t, 5, kept.Score)
	assert.Equal(t, model.SourceApp, kept.Source)
}

func TestClassifyLegacyIgnoresOtherPsychologistsPatients(t *testing.T) {
	f := newFixture(t, nil)
	other, err := f.auth.Register(f.ctx, model.RegisterRequest{Name: "Outro", Email: "outro@clinica.br", Password: "segredo1"})
	require.NoError(t, err)

	preview, err := f.legacy.ClassifyLegacy(f.ctx, other.ID, []model.LegacyRow{
		{PatientID: f.patient.ID, Date: "2026-10-01", Answers: json.RawMessage(`[0,0,0,0,0,0,0]`)},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportUnknownPatient, preview[0].Status)
}

func TestLegacyRowsAreValidatedLikeSubmissions(t *testing.T) {
	f := newFixture(t, nil)

	preview, err := f.legacy.ClassifyLegacy(f.ctx, f.psy.ID, []model.LegacyRow{
		{PatientID: f.patient.ID, Date: "2026-10-20", QuestionnaireID: questionnaire.PHQ9, Answers: json.RawMessage(`[9,9,9,9,9,9,9,9,9]`)},
		{PatientID: f.patient.ID, Date: "2026-10-22", QuestionnaireID: questionnaire.GAD7, Answers: json.RawMessage(`[3]`)},
		{PatientID: f.patient.ID, Date: "2026-10-23", Answers: json.RawMessage(`[4,4,4,4,4,4,4]`)},
		{PatientID: f.patient.ID, Date: "2026-10-24", Answers: json.RawMessage(`{"nota_humor":9}`)},
	})
	require.NoError(t, err)
	for i, row := range preview {
		assert.Equal(t, ImportInvalidAnswers, row.Status, "line %d", i+1)
		assert.Empty(t, row.QuestionnaireID, "line %d", i+1)
	}

	// a preview row edited after classification is still checked on import
	tampered := model.ImportPreviewRow{
		PatientID: f.patient.ID, Date: "2026-10-20", QuestionnaireID: questionnaire.PHQ9,
		Answers: json.RawMessage(`[9,9,9,9,9,9,9,9,9]`), Score: 81, Status: ImportOK,
	}
	res, err := f.legacy.ImportLegacy(f.ctx, append(preview, tampered))
	require.NoError(t, err)
	assert.Equal(t, model.ImportResult{Skipped: 5, Total: 5}, *res)

	scores, err := f.weekly.Aggregate(f.ctx, f.patient.ID, day(t, "2026-10-24"))
	require.NoError(t, err)
	assert.Empty(t, scores)
}
