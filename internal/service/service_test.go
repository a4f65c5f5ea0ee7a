package service

import (
	"context"
	"testing"
	"time"

	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var brt = time.FixedZone("BRT", -3*60*60)

// day returns noon of a civil date in the reference zone.
func day(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := questionnaire.ParseDate(date, brt)
	require.NoError(t, err)
	return d.Add(12 * time.Hour)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type stubCompleter struct {
	text   string
	err    error
	calls  int
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, _, user string) (string, error) {
	s.calls++
	s.prompt = user
	return s.text, s.err
}

type recordingMirror struct {
	responses []model.DailyResponse
	summaries []model.WeeklySummary
}

func (m *recordingMirror) SyncDailyResponse(_ context.Context, r *model.DailyResponse) {
	m.responses = append(m.responses, *r)
}

func (m *recordingMirror) SyncWeeklySummary(_ context.Context, s *model.WeeklySummary) {
	m.summaries = append(m.summaries, *s)
}

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	auth     *AuthService
	patients *PatientService
	daily    *DailyService
	weekly   *WeeklyService
	legacy   *LegacyService
	psy      *model.Psychologist
	patient  *model.Patient
}

// newFixture wires every service on a fresh database with one psychologist
// and one patient scheduled for PHQ-9 on tuesday, GAD-7 on thursday and the
// mood diary on saturday.
func newFixture(t *testing.T, ai Completer) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{ctx: context.Background(), db: db}
	f.auth = NewAuthService(db)
	f.patients = NewPatientService(db)
	f.daily = NewDailyService(db, f.patients, brt)
	f.weekly = NewWeeklyService(db, f.daily, NewSummaryAssembler(ai, time.Second))
	f.legacy = NewLegacyService(f.daily, f.patients)

	var err error
	f.psy, err = f.auth.Register(f.ctx, model.RegisterRequest{Name: "Ana", Email: "ana@clinica.br", Password: "segredo1"})
	require.NoError(t, err)
	f.patient, err = f.patients.Create(f.ctx, f.psy.ID, model.PatientRequest{Name: "Bruno"})
	require.NoError(t, err)
	_, err = f.patients.SetSchedule(f.ctx, f.psy.ID, f.patient.ID, questionnaire.ScheduleConfig{
		{Day: "tuesday", QuestionnaireID: questionnaire.PHQ9},
		{Day: "thursday", QuestionnaireID: questionnaire.GAD7},
		{Day: "saturday", QuestionnaireID: questionnaire.MoodDiary},
	})
	require.NoError(t, err)
	return f
}

const (
	phqAnswers  = `[1,1,1,1,1,0,0,0,0]`
	gadAnswers  = `[2,2,2,2,2,2,0]`
	moodAnswers = `{"nota_humor":4,"reflexao_texto":"semana melhor"}`
)

// answerWeek records the three scheduled questionnaires of the week of
// 2026-10-20.
func (f *fixture) answerWeek(t *testing.T) {
	t.Helper()
	for _, a := range []struct{ date, id, raw string }{
		{"2026-10-20", questionnaire.PHQ9, phqAnswers},
		{"2026-10-22", questionnaire.GAD7, gadAnswers},
		{"2026-10-24", questionnaire.MoodDiary, moodAnswers},
	} {
		_, err := f.daily.Submit(f.ctx, f.patient.ID, day(t, a.date), a.id, []byte(a.raw))
		require.NoError(t, err, a.date)
	}
}
