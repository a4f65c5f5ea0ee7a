package questionnaire

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ScheduleSize is the number of questionnaire days in a weekly schedule.
const ScheduleSize = 3

const (
	ReasonNoSchedule      = "no-schedule"
	ReasonAlreadyAnswered = "already-answered"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

var dayKeys = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type ScheduleEntry struct {
	Day             string `json:"dia"`
	QuestionnaireID string `json:"questionario"`
}

type ScheduleConfig []ScheduleEntry

// Validate enforces exactly three entries on distinct days, each pointing at
// a schedulable questionnaire.
func (c ScheduleConfig) Validate() error {
	if len(c) != ScheduleSize {
		return fmt.Errorf("%w: expected %d entries, got %d", ErrInvalidSchedule, ScheduleSize, len(c))
	}
	seen := make(map[string]bool, len(c))
	for _, e := range c {
		day := strings.ToLower(e.Day)
		if _, ok := dayKeys[day]; !ok {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, e.Day)
		}
		if seen[day] {
			return fmt.Errorf("%w: day %q repeated", ErrInvalidSchedule, e.Day)
		}
		seen[day] = true
		if _, err := Lookup(e.QuestionnaireID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}
	return nil
}

// DayKey is the lower-case english weekday of at in loc.
func DayKey(at time.Time, loc *time.Location) string {
	return strings.ToLower(at.In(loc).Weekday().String())
}

// CalendarDate is the civil date of at in loc.
func CalendarDate(at time.Time, loc *time.Location) string {
	return at.In(loc).Format(DateLayout)
}

// ParseDate reads a YYYY-MM-DD civil date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// Occurrence is the outcome of resolving the questionnaire due on a date.
type Occurrence struct {
	Date   string      `json:"data"`
	Day    string      `json:"dia"`
	Due    *Definition `json:"questionario"`
	Reason string      `json:"motivo,omitempty"`
}

// AnsweredFunc reports whether the patient already answered on date.
type AnsweredFunc func(date string) (bool, error)

// ResolveToday maps at to the questionnaire configured for its weekday in
// loc. answered is only consulted when something is scheduled.
func ResolveToday(cfg ScheduleConfig, at time.Time, loc *time.Location, answered AnsweredFunc) (Occurrence, error) {
	occ := Occurrence{Date: CalendarDate(at, loc), Day: DayKey(at, loc)}

	var match *ScheduleEntry
	for i := range cfg {
		if strings.ToLower(cfg[i].Day) == occ.Day {
			match = &cfg[i]
			break
		}
	}
	if match == nil {
		occ.Reason = ReasonNoSchedule
		return occ, nil
	}

	done, err := answered(occ.Date)
	if err != nil {
		return occ, err
	}
	if done {
		occ.Reason = ReasonAlreadyAnswered
		return occ, nil
	}

	def, err := Lookup(match.QuestionnaireID)
	if err != nil {
		return occ, err
	}
	occ.Due = def
	return occ, nil
}
