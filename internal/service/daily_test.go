package service

import (
	"encoding/json"
	"sync"
	"testing"

	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayFollowsSchedule(t *testing.T) {
	f := newFixture(t, nil)

	occ, err := f.daily.Today(f.ctx, f.patient.ID, day(t, "2026-10-19"))
	require.NoError(t, err)
	assert.Nil(t, occ.Due)
	assert.Equal(t, questionnaire.ReasonNoSchedule, occ.Reason)

	occ, err = f.daily.Today(f.ctx, f.patient.ID, day(t, "2026-10-20"))
	require.NoError(t, err)
	require.NotNil(t, occ.Due)
	assert.Equal(t, questionnaire.PHQ9, occ.Due.ID)
	assert.Equal(t, "2026-10-20", occ.Date)
}

func TestSubmitThenDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	m := &recordingMirror{}
	f.daily.SetMirror(m)
	tuesday := day(t, "2026-10-20")

	r, err := f.daily.Submit(f.ctx, f.patient.ID, tuesday, questionnaire.PHQ9, []byte(phqAnswers))
	require.NoError(t, err)
	assert.Equal(t, 5, r.Score)
	assert.Equal(t, "2026-10-20", r.ResponseDate)
	assert.Equal(t, model.SourceApp, r.Source)
	assert.JSONEq(t, phqAnswers, string(r.Answers))
	require.Len(t, m.responses, 1)

	_, err = f.daily.Submit(f.ctx, f.patient.ID, tuesday, questionnaire.PHQ9, []byte(phqAnswers))
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	occ, err := f.daily.Today(f.ctx, f.patient.ID, tuesday)
	require.NoError(t, err)
	assert.Nil(t, occ.Due)
	assert.Equal(t, questionnaire.ReasonAlreadyAnswered, occ.Reason)
	assert.Len(t, m.responses, 1)
}

func TestSubmitRejectsWrongOrUnscheduled(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.daily.Submit(f.ctx, f.patient.ID, day(t, "2026-10-19"), questionnaire.PHQ9, []byte(phqAnswers))
	assert.ErrorIs(t, err, ErrNothingDue)

	_, err = f.daily.Submit(f.ctx, f.patient.ID, day(t, "2026-10-20"), questionnaire.GAD7, []byte(gadAnswers))
	assert.ErrorIs(t, err, ErrWrongQuestionnaire)
}

func TestRecordValidation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.daily.Record(f.ctx, f.patient.ID, "2026-10-20", "questionario9", []byte(phqAnswers))
	assert.ErrorIs(t, err, ErrUnknownQuestionnaire)

	for _, raw := range []string{``, `[]`, `[1,2,3]`, `{"x":1}`, `[0,1,2,3,0,1,2,3,9]`} {
		_, err = f.daily.Record(f.ctx, f.patient.ID, "2026-10-20", questionnaire.PHQ9, []byte(raw))
		assert.ErrorIs(t, err, ErrIncompleteAnswers, raw)
	}

	var n int64
	f.db.Model(&model.DailyResponse{}).Count(&n)
	assert.Zero(t, n)
}

func TestRecordListAndMapPayloads(t *testing.T) {
	f := newFixture(t, nil)

	byList, err := f.daily.Record(f.ctx, f.patient.ID, "2026-10-20", questionnaire.GAD7, []byte(gadAnswers))
	require.NoError(t, err)
	byMap, err := f.daily.Record(f.ctx, f.patient.ID, "2026-10-21", questionnaire.GAD7,
		[]byte(`{"q1":2,"q2":2,"q3":2,"q4":2,"q5":2,"q6":2,"q7":0}`))
	require.NoError(t, err)
	assert.Equal(t, byList.Score, byMap.Score)

	stored, err := f.daily.FindOne(f.ctx, f.patient.ID, "2026-10-21")
	require.NoError(t, err)
	var payload map[string]int
	require.NoError(t, json.Unmarshal(stored.Answers, &payload))
	assert.Equal(t, 2, payload["q1"])

	missing, err := f.daily.FindOne(f.ctx, f.patient.ID, "2026-10-22")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordConcurrentSubmissionsStoreOne(t *testing.T) {
	f := newFixture(t, nil)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.daily.Record(f.ctx, f.patient.ID, "2026-10-20", questionnaire.PHQ9, []byte(phqAnswers))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateSubmission)
	}
	assert.Equal(t, 1, ok)
}

// Tue/Thu/Sat schedule answered over a full week: three due days, each
// answerable once.
func TestWeekScenario(t *testing.T) {
	f := newFixture(t, nil)

	due := 0
	for _, date := range []string{"2026-10-18", "2026-10-19", "2026-10-20", "2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24"} {
		occ, err := f.daily.Today(f.ctx, f.patient.ID, day(t, date))
		require.NoError(t, err)
		if occ.Due != nil {
			due++
		}
	}
	assert.Equal(t, 3, due)

	f.answerWeek(t)
	n, err := f.daily.CountWeek(f.ctx, f.patient.ID, day(t, "2026-10-24"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := f.daily.FindRange(f.ctx, f.patient.ID, "2026-10-21", "2026-10-24")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-10-22", rows[0].ResponseDate)
	assert.Equal(t, "2026-10-24", rows[1].ResponseDate)
}
