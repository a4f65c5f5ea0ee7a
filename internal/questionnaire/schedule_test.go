package questionnaire

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

func sampleSchedule() ScheduleConfig {
	return ScheduleConfig{
		{Day: "tuesday", QuestionnaireID: PHQ9},
		{Day: "thursday", QuestionnaireID: GAD7},
		{Day: "saturday", QuestionnaireID: MoodDiary},
	}
}

func never(string) (bool, error) { return false, nil }

func TestScheduleValidate(t *testing.T) {
	require.NoError(t, sampleSchedule().Validate())

	cases := map[string]ScheduleConfig{
		"too short": sampleSchedule()[:2],
		"repeated day": {
			{Day: "tuesday", QuestionnaireID: PHQ9},
			{Day: "Tuesday", QuestionnaireID: GAD7},
			{Day: "saturday", QuestionnaireID: MoodDiary},
		},
		"unknown day": {
			{Day: "terça", QuestionnaireID: PHQ9},
			{Day: "thursday", QuestionnaireID: GAD7},
			{Day: "saturday", QuestionnaireID: MoodDiary},
		},
		"name-only questionnaire": {
			{Day: "tuesday", QuestionnaireID: Biomarkers},
			{Day: "thursday", QuestionnaireID: GAD7},
			{Day: "saturday", QuestionnaireID: MoodDiary},
		},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidSchedule)
		})
	}
}

func TestResolveTodayDueOnThreeDaysPerWeek(t *testing.T) {
	callers := []*time.Location{time.UTC, time.FixedZone("JST", 9*60*60), time.FixedZone("PST", -8*60*60)}
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, brt)

	for _, caller := range callers {
		due := 0
		// sample every 6 hours so late-evening reference times are covered
		for h := 0; h < 7*24; h += 6 {
			at := monday.Add(time.Duration(h) * time.Hour).In(caller)
			occ, err := ResolveToday(sampleSchedule(), at, brt, never)
			require.NoError(t, err)
			if occ.Due != nil {
				due++
			} else {
				assert.Equal(t, ReasonNoSchedule, occ.Reason)
			}
		}
		assert.Equal(t, 3*4, due, "caller zone %s", caller)
	}
}

func TestResolveTodayUsesReferenceZone(t *testing.T) {
	// 23:30 on a Tuesday in the reference zone is already Wednesday in UTC.
	at := time.Date(2026, 10, 20, 23, 30, 0, 0, brt).UTC()
	require.Equal(t, time.Wednesday, at.Weekday())

	occ, err := ResolveToday(sampleSchedule(), at, brt, never)
	require.NoError(t, err)
	require.NotNil(t, occ.Due)
	assert.Equal(t, PHQ9, occ.Due.ID)
	assert.Equal(t, "2026-10-20", occ.Date)
	assert.Equal(t, "tuesday", occ.Day)
}

func TestResolveTodayScenario(t *testing.T) {
	tuesday, err := ParseDate("2026-10-20", brt)
	require.NoError(t, err)

	answered := map[string]bool{}
	check := func(date string) (bool, error) { return answered[date], nil }

	occ, err := ResolveToday(sampleSchedule(), tuesday, brt, check)
	require.NoError(t, err)
	require.NotNil(t, occ.Due)
	assert.Equal(t, PHQ9, occ.Due.ID)

	answered["2026-10-20"] = true
	occ, err = ResolveToday(sampleSchedule(), tuesday, brt, check)
	require.NoError(t, err)
	assert.Nil(t, occ.Due)
	assert.Equal(t, ReasonAlreadyAnswered, occ.Reason)
}

func TestResolveTodaySkipsLookupWhenNothingScheduled(t *testing.T) {
	wednesday, _ := ParseDate("2026-10-21", brt)
	called := false
	occ, err := ResolveToday(sampleSchedule(), wednesday, brt, func(string) (bool, error) {
		called = true
		return false, nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, ReasonNoSchedule, occ.Reason)
}

func TestResolveTodayPropagatesLookupError(t *testing.T) {
	tuesday, _ := ParseDate("2026-10-20", brt)
	boom := errors.New("db down")
	_, err := ResolveToday(sampleSchedule(), tuesday, brt, func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
