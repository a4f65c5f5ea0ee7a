package model

import (
	"encoding/json"

	"psi-tracker/internal/questionnaire"
)

type RegisterRequest struct {
	Name     string `json:"nome" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"senha" binding:"required,min=6"`
	CRP      string `json:"crp"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"senha" binding:"required"`
}

type PatientLoginRequest struct {
	Code string `json:"codigo" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"usuario"`
}

type User struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
	Role string `json:"papel"`
}

type PatientRequest struct {
	Name  string `json:"nome" binding:"required"`
	Email string `json:"email"`
}

type ScheduleRequest struct {
	Items questionnaire.ScheduleConfig `json:"itens" binding:"required"`
}

type AnswerRequest struct {
	QuestionnaireID string          `json:"questionario" binding:"required"`
	Answers         json.RawMessage `json:"respostas" binding:"required"`
	Date            string          `json:"data"`
}

type AnswerResponse struct {
	Response      *DailyResponse `json:"resposta"`
	ShowSummary   bool           `json:"mostrarResumo"`
	WeekResponses int            `json:"respostasSemana"`
}

type SummaryRequest struct {
	TextoResumo      string `json:"textoResumo" binding:"required"`
	TextoExpectativa string `json:"textoExpectativa"`
	Date             string `json:"data"`
}

type SummaryStatus struct {
	ShowSummary   bool           `json:"mostrarResumo"`
	WeekResponses int            `json:"respostasSemana"`
	Latest        *WeeklySummary `json:"ultimoResumo,omitempty"`
}

type ScoresResponse struct {
	AsOf   string                                `json:"data"`
	Scores map[string]questionnaire.ScoreSummary `json:"pontuacoes"`
}

// LegacyRow is one answer row from an old export, usually without a
// questionnaire tag.
type LegacyRow struct {
	PatientID       int             `json:"pacienteId"`
	PatientName     string          `json:"paciente"`
	Date            string          `json:"data"`
	QuestionnaireID string          `json:"questionario"`
	Answers         json.RawMessage `json:"respostas"`
}

type ImportPreviewRow struct {
	Line            int             `json:"linha"`
	PatientID       int             `json:"pacienteId"`
	PatientName     string          `json:"paciente"`
	Date            string          `json:"data"`
	QuestionnaireID string          `json:"questionario"`
	Score           int             `json:"pontuacao"`
	Status          string          `json:"status"`
	Answers         json.RawMessage `json:"-"`
}

type ImportPreview struct {
	Token string             `json:"token"`
	Rows  []ImportPreviewRow `json:"linhas"`
}

type ImportConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

type ImportResult struct {
	Imported   int `json:"importadas"`
	Duplicates int `json:"duplicadas"`
	Skipped    int `json:"ignoradas"`
	Total      int `json:"total"`
}
