package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// access codes skip look-alike characters (0/O, 1/I)
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength   = 6
	codeAttempts = 5
)

type PatientService struct {
	db      *gorm.DB
	newCode func() (string, error)
}

func NewPatientService(db *gorm.DB) *PatientService {
	return &PatientService{db: db, newCode: genAccessCode}
}

func genAccessCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Create stores a patient with a fresh access code, retrying on code
// collisions.
func (s *PatientService) Create(ctx context.Context, psychologistID int, req model.PatientRequest) (*model.Patient, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate access code: %w", err)
		}
		p := model.Patient{
			PsychologistID: psychologistID,
			Name:           strings.TrimSpace(req.Name),
			Email:          strings.TrimSpace(req.Email),
			AccessCode:     code,
		}
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&p)
		if res.Error != nil {
			return nil, fmt.Errorf("insert patient: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("no free access code after %d attempts", codeAttempts)
}

func (s *PatientService) List(ctx context.Context, psychologistID int) ([]model.Patient, error) {
	var out []model.Patient
	err := s.db.WithContext(ctx).Where("psychologist_id = ?", psychologistID).Order("name").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

// Get returns the patient only when it belongs to psychologistID.
func (s *PatientService) Get(ctx context.Context, psychologistID, patientID int) (*model.Patient, error) {
	var p model.Patient
	err := s.db.WithContext(ctx).Where("id = ? AND psychologist_id = ?", patientID, psychologistID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query patient: %w", err)
	}
	return &p, nil
}

func (s *PatientService) Update(ctx context.Context, psychologistID, patientID int, req model.PatientRequest) (*model.Patient, error) {
	p, err := s.Get(ctx, psychologistID, patientID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(p).Updates(map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"email": strings.TrimSpace(req.Email),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return s.Get(ctx, psychologistID, patientID)
}

// Delete removes the patient together with schedule, responses and summaries.
func (s *PatientService) Delete(ctx context.Context, psychologistID, patientID int) error {
	if _, err := s.Get(ctx, psychologistID, patientID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.ScheduleEntry{}, &model.DailyResponse{}, &model.WeeklySummary{}} {
			if err := tx.Where("patient_id = ?", patientID).Delete(m).Error; err != nil {
				return fmt.Errorf("delete patient data: %w", err)
			}
		}
		return tx.Delete(&model.Patient{}, patientID).Error
	})
}

// Schedule loads the weekly questionnaire configuration of a patient.
func (s *PatientService) Schedule(ctx context.Context, patientID int) (questionnaire.ScheduleConfig, error) {
	var rows []model.ScheduleEntry
	if err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	cfg := make(questionnaire.ScheduleConfig, 0, len(rows))
	for _, r := range rows {
		cfg = append(cfg, questionnaire.ScheduleEntry{Day: r.Day, QuestionnaireID: r.QuestionnaireID})
	}
	return cfg, nil
}

// SetSchedule replaces the whole schedule of a patient.
func (s *PatientService) SetSchedule(ctx context.Context, psychologistID, patientID int, cfg questionnaire.ScheduleConfig) (questionnaire.ScheduleConfig, error) {
	if _, err := s.Get(ctx, psychologistID, patientID); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ?", patientID).Delete(&model.ScheduleEntry{}).Error; err != nil {
			return err
		}
		rows := make([]model.ScheduleEntry, len(cfg))
		for i, e := range cfg {
			rows[i] = model.ScheduleEntry{PatientID: patientID, Day: strings.ToLower(e.Day), QuestionnaireID: e.QuestionnaireID}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("replace schedule: %w", err)
	}
	return s.Schedule(ctx, patientID)
}
