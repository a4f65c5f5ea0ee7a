package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mirror receives a copy of every stored response and summary.
type Mirror interface {
	SyncDailyResponse(ctx context.Context, r *model.DailyResponse)
	SyncWeeklySummary(ctx context.Context, s *model.WeeklySummary)
}

type DailyService struct {
	db       *gorm.DB
	patients *PatientService
	loc      *time.Location
	mirror   Mirror
}

func NewDailyService(db *gorm.DB, patients *PatientService, loc *time.Location) *DailyService {
	return &DailyService{db: db, patients: patients, loc: loc}
}

func (s *DailyService) SetMirror(m Mirror) { s.mirror = m }

func (s *DailyService) Location() *time.Location { return s.loc }

// FindOne returns the response of patientID on date, or nil.
func (s *DailyService) FindOne(ctx context.Context, patientID int, date string) (*model.DailyResponse, error) {
	var r model.DailyResponse
	err := s.db.WithContext(ctx).Where("patient_id = ? AND response_date = ?", patientID, date).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query response: %w", err)
	}
	return &r, nil
}

// FindRange lists responses with from <= date <= to, oldest first.
func (s *DailyService) FindRange(ctx context.Context, patientID int, from, to string) ([]model.DailyResponse, error) {
	var out []model.DailyResponse
	err := s.db.WithContext(ctx).
		Where("patient_id = ? AND response_date >= ? AND response_date <= ?", patientID, from, to).
		Order("response_date, id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	return out, nil
}

// Today resolves which questionnaire, if any, patientID should answer at the
// given instant.
func (s *DailyService) Today(ctx context.Context, patientID int, at time.Time) (questionnaire.Occurrence, error) {
	cfg, err := s.patients.Schedule(ctx, patientID)
	if err != nil {
		return questionnaire.Occurrence{}, err
	}
	return questionnaire.ResolveToday(cfg, at, s.loc, func(date string) (bool, error) {
		r, err := s.FindOne(ctx, patientID, date)
		return r != nil, err
	})
}

// Submit records an answer for the questionnaire due at the given instant.
func (s *DailyService) Submit(ctx context.Context, patientID int, at time.Time, questionnaireID string, raw []byte) (*model.DailyResponse, error) {
	occ, err := s.Today(ctx, patientID, at)
	if err != nil {
		return nil, err
	}
	switch {
	case occ.Reason == questionnaire.ReasonAlreadyAnswered:
		return nil, ErrDuplicateSubmission
	case occ.Due == nil:
		return nil, ErrNothingDue
	case occ.Due.ID != questionnaireID:
		return nil, fmt.Errorf("%w: expected %s", ErrWrongQuestionnaire, occ.Due.ID)
	}
	return s.Record(ctx, patientID, occ.Date, questionnaireID, raw)
}

// Record validates and stores a single day's answers. The unique
// (patient_id, response_date) index makes the insert the only check: a
// conflicting row means the day was already answered.
func (s *DailyService) Record(ctx context.Context, patientID int, date, questionnaireID string, raw []byte) (*model.DailyResponse, error) {
	def, err := questionnaire.Lookup(questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownQuestionnaire, err)
	}
	answers, err := questionnaire.ParseAnswers(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteAnswers, err)
	}
	if err := questionnaire.Validate(def, answers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteAnswers, err)
	}

	r := model.DailyResponse{
		PatientID:       patientID,
		ResponseDate:    date,
		QuestionnaireID: questionnaireID,
		Answers:         datatypes.JSON(raw),
		Score:           questionnaire.Score(def, answers),
		Source:          model.SourceApp,
	}
	inserted, err := s.insert(ctx, &r)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrDuplicateSubmission
	}

	logger.Ctx(ctx).Info("daily.recorded", "patient_id", patientID, "date", date, "questionnaire", questionnaireID, "score", r.Score)
	if s.mirror != nil {
		s.mirror.SyncDailyResponse(ctx, &r)
	}
	return &r, nil
}

func (s *DailyService) insert(ctx context.Context, r *model.DailyResponse) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(r)
	if res.Error != nil {
		return false, fmt.Errorf("insert response: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CountWeek counts responses in the trailing window ending at asOf.
func (s *DailyService) CountWeek(ctx context.Context, patientID int, asOf time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.DailyResponse{}).
		Where("patient_id = ? AND response_date >= ? AND response_date <= ?",
			patientID, questionnaire.WindowStart(asOf, s.loc), questionnaire.CalendarDate(asOf, s.loc)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return int(n), nil
}

// WeekRecords loads the trailing window ending at asOf in aggregation form.
func (s *DailyService) WeekRecords(ctx context.Context, patientID int, asOf time.Time) ([]questionnaire.Record, error) {
	rows, err := s.FindRange(ctx, patientID, questionnaire.WindowStart(asOf, s.loc), questionnaire.CalendarDate(asOf, s.loc))
	if err != nil {
		return nil, err
	}
	out := make([]questionnaire.Record, 0, len(rows))
	for _, r := range rows {
		answers, err := questionnaire.ParseAnswers(r.Answers)
		if err != nil {
			logger.Ctx(ctx).Warn("daily.unreadable", "id", r.ID, "err", err)
			continue
		}
		out = append(out, questionnaire.Record{Date: r.ResponseDate, QuestionnaireID: r.QuestionnaireID, Answers: answers})
	}
	return out, nil
}
