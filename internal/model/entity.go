package model

import (
	"time"

	"gorm.io/datatypes"
)

type Psychologist struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120" json:"nome"`
	Email     string    `gorm:"size:191;uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	CRP       string    `gorm:"size:30" json:"crp"`
	CreatedAt time.Time `json:"criadoEm"`
}

type Patient struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	PsychologistID int       `gorm:"index" json:"psicologoId"`
	Name           string    `gorm:"size:120" json:"nome"`
	Email          string    `gorm:"size:191" json:"email"`
	AccessCode     string    `gorm:"size:12;uniqueIndex" json:"codigoAcesso"`
	CreatedAt      time.Time `json:"criadoEm"`
	UpdatedAt      time.Time `json:"atualizadoEm"`
}

type ScheduleEntry struct {
	ID              int    `gorm:"primaryKey" json:"-"`
	PatientID       int    `gorm:"uniqueIndex:uk_patient_day" json:"-"`
	Day             string `gorm:"size:10;uniqueIndex:uk_patient_day" json:"dia"`
	QuestionnaireID string `gorm:"size:40" json:"questionario"`
}

// DailyResponse dates are civil dates in the reference timezone, stored as
// YYYY-MM-DD text so they compare lexically on every driver.
type DailyResponse struct {
	ID              int            `gorm:"primaryKey" json:"id"`
	PatientID       int            `gorm:"uniqueIndex:uk_patient_date" json:"pacienteId"`
	ResponseDate    string         `gorm:"size:10;uniqueIndex:uk_patient_date" json:"data"`
	QuestionnaireID string         `gorm:"size:40;not null" json:"questionario"`
	Answers         datatypes.JSON `json:"respostas"`
	Score           int            `json:"pontuacao"`
	Source          string         `gorm:"size:20;default:app" json:"origem"`
	CreatedAt       time.Time      `json:"criadoEm"`
}

type WeeklySummary struct {
	ID               int       `gorm:"primaryKey" json:"id"`
	PatientID        int       `gorm:"uniqueIndex:uk_patient_week" json:"pacienteId"`
	WeekEnd          string    `gorm:"size:10;uniqueIndex:uk_patient_week" json:"fimSemana"`
	TextoResumo      string    `gorm:"type:text" json:"textoResumo"`
	TextoExpectativa string    `gorm:"type:text" json:"textoExpectativa"`
	Narrative        string    `gorm:"type:text" json:"analise"`
	NarrativeSource  string    `gorm:"size:20" json:"origemAnalise"`
	CreatedAt        time.Time `json:"criadoEm"`
	UpdatedAt        time.Time `json:"atualizadoEm"`
}

const (
	NarrativeAI       = "ia"
	NarrativeFallback = "padrao"

	SourceApp    = "app"
	SourceImport = "import"
)

func (Psychologist) TableName() string  { return "psychologists" }
func (Patient) TableName() string       { return "patients" }
func (ScheduleEntry) TableName() string { return "schedule_entries" }
func (DailyResponse) TableName() string { return "daily_responses" }
func (WeeklySummary) TableName() string { return "weekly_summaries" }

// All lists the entities for AutoMigrate.
func All() []any {
	return []any{&Psychologist{}, &Patient{}, &ScheduleEntry{}, &DailyResponse{}, &WeeklySummary{}}
}
