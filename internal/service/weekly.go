package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryUnlockCount is how many answered questionnaires in the trailing week
// unlock the weekly reflection.
const SummaryUnlockCount = questionnaire.ScheduleSize

type WeeklyService struct {
	db        *gorm.DB
	daily     *DailyService
	assembler *SummaryAssembler
	mirror    Mirror
}

func NewWeeklyService(db *gorm.DB, daily *DailyService, assembler *SummaryAssembler) *WeeklyService {
	return &WeeklyService{db: db, daily: daily, assembler: assembler}
}

func (s *WeeklyService) SetMirror(m Mirror) { s.mirror = m }

// Aggregate summarises the trailing week of patientID ending at asOf.
func (s *WeeklyService) Aggregate(ctx context.Context, patientID int, asOf time.Time) (map[string]questionnaire.ScoreSummary, error) {
	records, err := s.daily.WeekRecords(ctx, patientID, asOf)
	if err != nil {
		return nil, err
	}
	return questionnaire.Aggregate(records, asOf, s.daily.Location()), nil
}

// Latest returns the most recent weekly summary, or nil.
func (s *WeeklyService) Latest(ctx context.Context, patientID int) (*model.WeeklySummary, error) {
	var ws model.WeeklySummary
	err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("week_end DESC, id DESC").First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return &ws, nil
}

func (s *WeeklyService) List(ctx context.Context, patientID int) ([]model.WeeklySummary, error) {
	var out []model.WeeklySummary
	if err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("week_end DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return out, nil
}

// sameWeek reports whether ws falls inside the rolling week ending at asOf.
func (s *WeeklyService) sameWeek(ws *model.WeeklySummary, asOf time.Time) bool {
	return ws != nil && ws.WeekEnd > questionnaire.WindowStart(asOf, s.daily.Location())
}

// Status computes the weekly-reflection gate for the patient.
func (s *WeeklyService) Status(ctx context.Context, patientID int, asOf time.Time) (*model.SummaryStatus, error) {
	n, err := s.daily.CountWeek(ctx, patientID, asOf)
	if err != nil {
		return nil, err
	}
	latest, err := s.Latest(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &model.SummaryStatus{
		ShowSummary:   n >= SummaryUnlockCount && !s.sameWeek(latest, asOf),
		WeekResponses: n,
		Latest:        latest,
	}, nil
}

// Submit stores the patient's weekly reflection and back-fills its
// narrative. Narrative problems never fail the submission.
func (s *WeeklyService) Submit(ctx context.Context, patientID int, asOf time.Time, textoResumo, textoExpectativa string) (*model.WeeklySummary, error) {
	latest, err := s.Latest(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if s.sameWeek(latest, asOf) {
		return nil, ErrDuplicateSummary
	}

	ws := model.WeeklySummary{
		PatientID:        patientID,
		WeekEnd:          questionnaire.CalendarDate(asOf, s.daily.Location()),
		TextoResumo:      textoResumo,
		TextoExpectativa: textoExpectativa,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ws)
	if res.Error != nil {
		return nil, fmt.Errorf("insert summary: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateSummary
	}
	logger.Ctx(ctx).Info("summary.created", "patient_id", patientID, "week_end", ws.WeekEnd)

	if err := s.fillNarrative(ctx, &ws, asOf); err != nil {
		logger.Ctx(ctx).Error("summary.narrative_failed", "id", ws.ID, "err", err)
	}
	if s.mirror != nil {
		s.mirror.SyncWeeklySummary(ctx, &ws)
	}
	return &ws, nil
}

// Regenerate rebuilds the narrative of an existing summary of patientID.
func (s *WeeklyService) Regenerate(ctx context.Context, patientID, summaryID int) (*model.WeeklySummary, error) {
	var ws model.WeeklySummary
	err := s.db.WithContext(ctx).Where("id = ? AND patient_id = ?", summaryID, patientID).First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	asOf, err := questionnaire.ParseDate(ws.WeekEnd, s.daily.Location())
	if err != nil {
		return nil, fmt.Errorf("stored week end %q: %w", ws.WeekEnd, err)
	}
	if err := s.fillNarrative(ctx, &ws, asOf); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *WeeklyService) fillNarrative(ctx context.Context, ws *model.WeeklySummary, asOf time.Time) error {
	scores, err := s.Aggregate(ctx, ws.PatientID, asOf)
	if err != nil {
		return err
	}
	text, source := s.assembler.BuildNarrative(ctx, scores, ws.TextoResumo, ws.TextoExpectativa)
	if err := s.UpdateNarrative(ctx, ws.ID, text, source); err != nil {
		return err
	}
	ws.Narrative, ws.NarrativeSource = text, source
	return nil
}

func (s *WeeklyService) UpdateNarrative(ctx context.Context, id int, text, source string) error {
	err := s.db.WithContext(ctx).Model(&model.WeeklySummary{}).Where("id = ?", id).Updates(map[string]interface{}{
		"narrative":        text,
		"narrative_source": source,
	}).Error
	if err != nil {
		return fmt.Errorf("update narrative: %w", err)
	}
	return nil
}
