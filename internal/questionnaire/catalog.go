// Package questionnaire holds the static questionnaire catalog and the pure
// scheduling, scoring and narrative logic built on top of it.
package questionnaire

import (
	"errors"
	"fmt"
)

const (
	PHQ9      = "questionario1"
	GAD7      = "questionario2"
	MoodDiary = "questionario3"

	// Biomarkers only has a display name; there is no definition behind it.
	Biomarkers = "questBiomarkers"
)

// ErrUnknownQuestionnaire is returned for ids outside the closed catalog.
var ErrUnknownQuestionnaire = errors.New("unknown questionnaire")

const (
	KindScale = "escala"
	KindText  = "texto"
)

type Option struct {
	Text  string `json:"texto"`
	Value int    `json:"valor"`
}

// Prompt is one item of a questionnaire. Plain scale prompts only carry
// Text; their id is derived from the position (q1, q2, ...).
type Prompt struct {
	ID      string   `json:"id"`
	Text    string   `json:"texto"`
	Kind    string   `json:"tipo"`
	Options []Option `json:"opcoes,omitempty"`
}

type Definition struct {
	ID      string   `json:"id"`
	Title   string   `json:"titulo"`
	Prompts []Prompt `json:"perguntas"`
	Options []Option `json:"opcoes,omitempty"`
}

// Scale reports whether every prompt shares the definition's option list.
func (d *Definition) Scale() bool { return len(d.Options) > 0 }

// OptionsFor returns the options that apply to prompt i.
func (d *Definition) OptionsFor(i int) []Option {
	if len(d.Prompts[i].Options) > 0 {
		return d.Prompts[i].Options
	}
	if d.Prompts[i].Kind == KindText {
		return nil
	}
	return d.Options
}

// MaxScore sums the highest option value of every scored prompt.
func (d *Definition) MaxScore() int {
	total := 0
	for i := range d.Prompts {
		best := 0
		for _, o := range d.OptionsFor(i) {
			if o.Value > best {
				best = o.Value
			}
		}
		total += best
	}
	return total
}

type Band struct {
	Low   int    `json:"min"`
	High  int    `json:"max"`
	Label string `json:"gravidade"`
	Color string `json:"cor"`
}

type ScoringProfile struct {
	MaxScore int    `json:"pontuacaoMaxima"`
	Bands    []Band `json:"faixas"`
}

// Severity finds the band containing score.
func (p *ScoringProfile) Severity(score int) (Band, bool) {
	for _, b := range p.Bands {
		if score >= b.Low && score <= b.High {
			return b, true
		}
	}
	return Band{}, false
}

var frequency = []Option{
	{Text: "Nenhuma vez", Value: 0},
	{Text: "Vários dias", Value: 1},
	{Text: "Mais da metade dos dias", Value: 2},
	{Text: "Quase todos os dias", Value: 3},
}

var catalog = []*Definition{
	{
		ID:    PHQ9,
		Title: "PHQ-9",
		Prompts: scalePrompts(
			"Pouco interesse ou pouco prazer em fazer as coisas",
			"Se sentir para baixo, deprimido(a) ou sem perspectiva",
			"Dificuldade para pegar no sono ou permanecer dormindo, ou dormir mais do que de costume",
			"Se sentir cansado(a) ou com pouca energia",
			"Falta de apetite ou comendo demais",
			"Se sentir mal consigo mesmo(a) ou achar que você é um fracasso ou que decepcionou sua família ou você mesmo(a)",
			"Dificuldade para se concentrar nas coisas, como ler o jornal ou ver televisão",
			"Lentidão para se movimentar ou falar, a ponto das outras pessoas perceberem, ou o oposto",
			"Pensar em se ferir de alguma maneira ou que seria melhor estar morto(a)",
		),
		Options: frequency,
	},
	{
		ID:    GAD7,
		Title: "GAD-7",
		Prompts: scalePrompts(
			"Sentir-se nervoso(a), ansioso(a) ou muito tenso(a)",
			"Não ser capaz de impedir ou de controlar as preocupações",
			"Preocupar-se muito com diversas coisas",
			"Dificuldade para relaxar",
			"Ficar tão agitado(a) que se torna difícil permanecer sentado(a)",
			"Ficar facilmente aborrecido(a) ou irritado(a)",
			"Sentir medo como se algo horrível fosse acontecer",
		),
		Options: frequency,
	},
	{
		ID:    MoodDiary,
		Title: "Diário de Humor",
		Prompts: []Prompt{
			{ID: "nota_humor", Text: "Como você avalia seu humor hoje?", Kind: KindScale, Options: []Option{
				{Text: "Muito ruim", Value: 1},
				{Text: "Ruim", Value: 2},
				{Text: "Neutro", Value: 3},
				{Text: "Bom", Value: 4},
				{Text: "Muito bom", Value: 5},
			}},
			{ID: "reflexao_texto", Text: "Conte um pouco sobre o seu dia", Kind: KindText},
		},
	},
}

var profiles = map[string]*ScoringProfile{
	PHQ9: {MaxScore: 27, Bands: []Band{
		{0, 4, "Mínima", "#4caf50"},
		{5, 9, "Leve", "#cddc39"},
		{10, 14, "Moderada", "#ff9800"},
		{15, 19, "Moderadamente grave", "#ff5722"},
		{20, 27, "Grave", "#f44336"},
	}},
	GAD7: {MaxScore: 21, Bands: []Band{
		{0, 4, "Mínima", "#4caf50"},
		{5, 9, "Leve", "#cddc39"},
		{10, 14, "Moderada", "#ff9800"},
		{15, 21, "Grave", "#f44336"},
	}},
}

var displayNames = map[string]string{
	PHQ9:       "PHQ-9 (Depressão)",
	GAD7:       "GAD-7 (Ansiedade)",
	MoodDiary:  "Diário de Humor",
	Biomarkers: "ASSIST (Biomarcadores)",
}

func scalePrompts(texts ...string) []Prompt {
	out := make([]Prompt, len(texts))
	for i, t := range texts {
		out[i] = Prompt{ID: fmt.Sprintf("q%d", i+1), Text: t, Kind: KindScale}
	}
	return out
}

// Lookup returns the definition for id.
func Lookup(id string) (*Definition, error) {
	for _, d := range catalog {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionnaire, id)
}

// ScoringFor returns the scoring profile for id. The mood diary has none.
func ScoringFor(id string) (*ScoringProfile, bool) {
	p, ok := profiles[id]
	return p, ok
}

// All lists the schedulable definitions in catalog order.
func All() []*Definition { return catalog }

// DisplayName falls back to the raw id for unknown keys.
func DisplayName(id string) string {
	if n, ok := displayNames[id]; ok {
		return n
	}
	return id
}
