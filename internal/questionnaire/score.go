package questionnaire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// NoSeverity labels scores without a matching band or profile.
const NoSeverity = "N/A"

// WindowDays is the trailing window used by the weekly aggregation.
const WindowDays = 7

var (
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrMalformedAnswers  = errors.New("malformed answers")
)

// Answers is a decoded answer payload. Scale questionnaires usually send an
// ordered list of option values, the mood diary sends an object keyed by
// prompt id. Exactly one of List and Map is set.
type Answers struct {
	List []any
	Map  map[string]any
}

// ParseAnswers decodes a raw JSON payload, keeping numbers as json.Number.
func ParseAnswers(raw []byte) (Answers, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Answers{}, fmt.Errorf("%w: empty payload", ErrIncompleteAnswers)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Answers{}, fmt.Errorf("%w: %v", ErrMalformedAnswers, err)
	}
	switch t := v.(type) {
	case []any:
		return Answers{List: t}, nil
	case map[string]any:
		return Answers{Map: t}, nil
	default:
		return Answers{}, fmt.Errorf("%w: expected list or object", ErrMalformedAnswers)
	}
}

func (a Answers) Empty() bool { return len(a.List) == 0 && len(a.Map) == 0 }

// value returns the answer given to prompt i of def.
func (a Answers) value(def *Definition, i int) (any, bool) {
	if a.Map != nil {
		v, ok := a.Map[def.Prompts[i].ID]
		return v, ok
	}
	if i < len(a.List) {
		return a.List[i], true
	}
	return nil, false
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && finite(f)
	case float64:
		return t, finite(t)
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && finite(f)
	}
	return 0, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// maxScore bounds a summed score so the int conversion stays defined.
const maxScore = math.MaxInt32

func roundScore(total float64) int {
	switch {
	case math.IsNaN(total):
		return 0
	case total > maxScore:
		return maxScore
	case total < -maxScore:
		return -maxScore
	}
	return int(math.Round(total))
}

// Validate checks that every scored prompt of def has a numeric answer
// within its option set. Text prompts are optional but must be strings.
func Validate(def *Definition, a Answers) error {
	if a.Empty() {
		return fmt.Errorf("%w: empty payload", ErrIncompleteAnswers)
	}
	if a.List != nil && len(a.List) > len(def.Prompts) {
		return fmt.Errorf("%w: %d answers for %d prompts", ErrIncompleteAnswers, len(a.List), len(def.Prompts))
	}
	for i, p := range def.Prompts {
		v, ok := a.value(def, i)
		if p.Kind == KindText {
			if ok && v != nil {
				if _, isText := v.(string); !isText {
					return fmt.Errorf("%w: %s must be text", ErrIncompleteAnswers, p.ID)
				}
			}
			continue
		}
		if !ok || v == nil {
			return fmt.Errorf("%w: missing answer for %s", ErrIncompleteAnswers, p.ID)
		}
		f, isNum := numeric(v)
		if !isNum {
			return fmt.Errorf("%w: %s is not numeric", ErrIncompleteAnswers, p.ID)
		}
		if !allowed(def.OptionsFor(i), f) {
			return fmt.Errorf("%w: %s has no option %v", ErrIncompleteAnswers, p.ID, f)
		}
	}
	return nil
}

func allowed(opts []Option, f float64) bool {
	for _, o := range opts {
		if float64(o.Value) == f {
			return true
		}
	}
	return false
}

// Score sums the numeric answers of def's scored prompts. Missing or
// non-numeric answers count as zero. With a nil def every numeric value in
// the payload is summed. Sums are clamped to the int32 range.
func Score(def *Definition, a Answers) int {
	total := 0.0
	if def == nil {
		for _, v := range a.List {
			f, _ := numeric(v)
			total += f
		}
		for _, v := range a.Map {
			f, _ := numeric(v)
			total += f
		}
		return roundScore(total)
	}
	for i, p := range def.Prompts {
		if p.Kind == KindText {
			continue
		}
		if v, ok := a.value(def, i); ok {
			f, _ := numeric(v)
			total += f
		}
	}
	return roundScore(total)
}

// Classify picks the questionnaire bucket of a row. The explicit tag wins;
// untagged legacy rows fall back to the answer-count heuristic, which counts
// numeric list items only.
func Classify(tag string, a Answers) (string, bool) {
	if tag != "" {
		if _, err := Lookup(tag); err != nil {
			return "", false
		}
		return tag, true
	}
	if a.Map != nil {
		return MoodDiary, true
	}
	n := 0
	for _, v := range a.List {
		if _, ok := numeric(v); ok {
			n++
		}
	}
	switch n {
	case 9:
		return PHQ9, true
	case 7:
		return GAD7, true
	}
	return "", false
}

// Record is one stored daily response as seen by the aggregation.
type Record struct {
	Date            string
	QuestionnaireID string
	Answers         Answers
}

type ScoreSummary struct {
	Title         string `json:"titulo"`
	Current       int    `json:"atual"`
	Mean          int    `json:"media"`
	Min           int    `json:"minimo"`
	Max           int    `json:"maximo"`
	MaxPossible   int    `json:"pontuacaoMaxima"`
	PercentOfMax  int    `json:"percentual"`
	SeverityLabel string `json:"gravidade"`
	ColorToken    string `json:"cor"`
	History       []int  `json:"historico"`
}

// WindowStart is the first civil date included in the window ending at asOf.
func WindowStart(asOf time.Time, loc *time.Location) string {
	return CalendarDate(asOf.AddDate(0, 0, -WindowDays), loc)
}

// Aggregate groups the records dated within [asOf-7d, asOf] by questionnaire
// and summarises each non-empty bucket. Records are taken in chronological
// order; ties keep their input order.
func Aggregate(records []Record, asOf time.Time, loc *time.Location) map[string]ScoreSummary {
	from, to := WindowStart(asOf, loc), CalendarDate(asOf, loc)

	inWindow := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date >= from && r.Date <= to {
			inWindow = append(inWindow, r)
		}
	}
	sort.SliceStable(inWindow, func(i, j int) bool { return inWindow[i].Date < inWindow[j].Date })

	buckets := map[string][]int{}
	for _, r := range inWindow {
		id, ok := Classify(r.QuestionnaireID, r.Answers)
		if !ok {
			continue
		}
		def, _ := Lookup(id)
		buckets[id] = append(buckets[id], Score(def, r.Answers))
	}

	out := make(map[string]ScoreSummary, len(buckets))
	for id, scores := range buckets {
		out[id] = summarise(id, scores)
	}
	return out
}

func summarise(id string, scores []int) ScoreSummary {
	def, _ := Lookup(id)
	s := ScoreSummary{
		Title:         def.Title,
		Current:       scores[len(scores)-1],
		Min:           scores[0],
		Max:           scores[0],
		SeverityLabel: NoSeverity,
		History:       scores,
	}
	sum := 0
	for _, v := range scores {
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Mean = int(math.Round(float64(sum) / float64(len(scores))))

	s.MaxPossible = def.MaxScore()
	if p, ok := ScoringFor(id); ok {
		s.MaxPossible = p.MaxScore
		if b, ok := p.Severity(s.Current); ok {
			s.SeverityLabel, s.ColorToken = b.Label, b.Color
		}
	}
	if s.MaxPossible > 0 {
		s.PercentOfMax = int(math.Round(float64(s.Current) / float64(s.MaxPossible) * 100))
	}
	return s
}

// SortedIDs returns the keys of scores in a stable order.
func SortedIDs(scores map[string]ScoreSummary) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
