package service

import (
	"context"
	"strings"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"gorm.io/datatypes"
)

const (
	ImportOK             = "ok"
	ImportUnknownPatient = "paciente-desconhecido"
	ImportInvalidDate    = "data-invalida"
	ImportInvalidAnswers = "respostas-invalidas"
	ImportUnclassified   = "nao-classificado"
)

// LegacyService migrates untagged answer rows from older exports. Rows are
// tagged once on the way in so aggregation never has to guess for them.
type LegacyService struct {
	daily    *DailyService
	patients *PatientService
}

func NewLegacyService(daily *DailyService, patients *PatientService) *LegacyService {
	return &LegacyService{daily: daily, patients: patients}
}

// ClassifyLegacy resolves patient, date and questionnaire of every row
// without writing anything. Answers must pass the same validation as a
// regular submission.
func (s *LegacyService) ClassifyLegacy(ctx context.Context, psychologistID int, rows []model.LegacyRow) ([]model.ImportPreviewRow, error) {
	patients, err := s.patients.List(ctx, psychologistID)
	if err != nil {
		return nil, err
	}

	out := make([]model.ImportPreviewRow, len(rows))
	for i, r := range rows {
		out[i] = model.ImportPreviewRow{Line: i + 1, PatientName: r.PatientName, Date: r.Date, Answers: r.Answers}

		patient := matchPatient(r, patients)
		if patient == nil {
			out[i].Status = ImportUnknownPatient
			continue
		}
		out[i].PatientID, out[i].PatientName = patient.ID, patient.Name

		day, err := questionnaire.ParseDate(strings.TrimSpace(r.Date), s.daily.Location())
		if err != nil {
			out[i].Status = ImportInvalidDate
			continue
		}
		out[i].Date = questionnaire.CalendarDate(day, s.daily.Location())

		answers, err := questionnaire.ParseAnswers(r.Answers)
		if err != nil {
			out[i].Status = ImportInvalidAnswers
			continue
		}
		id, ok := questionnaire.Classify(strings.TrimSpace(r.QuestionnaireID), answers)
		if !ok {
			out[i].Status = ImportUnclassified
			continue
		}
		def, _ := questionnaire.Lookup(id)
		if err := questionnaire.Validate(def, answers); err != nil {
			out[i].Status = ImportInvalidAnswers
			continue
		}
		out[i].QuestionnaireID = id
		out[i].Score = questionnaire.Score(def, answers)
		out[i].Status = ImportOK
	}
	return out, nil
}

// ImportLegacy inserts the rows marked ok. Rows whose answers no longer
// validate are skipped. Days that already hold a response are counted as
// duplicates and left untouched.
func (s *LegacyService) ImportLegacy(ctx context.Context, rows []model.ImportPreviewRow) (*model.ImportResult, error) {
	res := &model.ImportResult{Total: len(rows)}
	for _, row := range rows {
		if row.Status != ImportOK || checkRow(row) != nil {
			res.Skipped++
			continue
		}
		r := model.DailyResponse{
			PatientID:       row.PatientID,
			ResponseDate:    row.Date,
			QuestionnaireID: row.QuestionnaireID,
			Answers:         datatypes.JSON(row.Answers),
			Score:           row.Score,
			Source:          model.SourceImport,
		}
		inserted, err := s.daily.insert(ctx, &r)
		if err != nil {
			return nil, err
		}
		if !inserted {
			res.Duplicates++
			continue
		}
		res.Imported++
		if s.daily.mirror != nil {
			s.daily.mirror.SyncDailyResponse(ctx, &r)
		}
	}
	logger.Ctx(ctx).Info("import.done", "imported", res.Imported, "duplicates", res.Duplicates, "skipped", res.Skipped)
	return res, nil
}

func checkRow(row model.ImportPreviewRow) error {
	def, err := questionnaire.Lookup(row.QuestionnaireID)
	if err != nil {
		return err
	}
	answers, err := questionnaire.ParseAnswers(row.Answers)
	if err != nil {
		return err
	}
	return questionnaire.Validate(def, answers)
}

func matchPatient(r model.LegacyRow, patients []model.Patient) *model.Patient {
	if r.PatientID != 0 {
		for i := range patients {
			if patients[i].ID == r.PatientID {
				return &patients[i]
			}
		}
		return nil
	}
	name := strings.TrimSpace(r.PatientName)
	if name == "" {
		return nil
	}
	for i := range patients {
		if strings.EqualFold(patients[i].Name, name) {
			return &patients[i]
		}
	}
	for i := range patients {
		if strings.Contains(strings.ToLower(patients[i].Name), strings.ToLower(name)) {
			return &patients[i]
		}
	}
	return nil
}
