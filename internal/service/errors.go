package service

import (
	"errors"
	"net/http"
)

type ErrorCode int

const (
	ErrorInvalid ErrorCode = iota + 1
	ErrorUnauthorized
	ErrorForbidden
	ErrorNotFound
	ErrorConflict
)

// ServiceError is a user-facing failure. Message is shown to the client.
type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Status() int {
	switch e.Code {
	case ErrorInvalid:
		return http.StatusBadRequest
	case ErrorUnauthorized:
		return http.StatusUnauthorized
	case ErrorForbidden:
		return http.StatusForbidden
	case ErrorNotFound:
		return http.StatusNotFound
	case ErrorConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var (
	ErrUnknownQuestionnaire = &ServiceError{ErrorInvalid, "questionário desconhecido"}
	ErrIncompleteAnswers    = &ServiceError{ErrorInvalid, "respostas incompletas ou inválidas"}
	ErrInvalidSchedule      = &ServiceError{ErrorInvalid, "a agenda deve ter 3 questionários em dias diferentes"}
	ErrInvalidDate          = &ServiceError{ErrorInvalid, "data inválida, use AAAA-MM-DD"}
	ErrWrongQuestionnaire   = &ServiceError{ErrorInvalid, "este não é o questionário de hoje"}
	ErrInvalidCredentials   = &ServiceError{ErrorUnauthorized, "credenciais inválidas"}
	ErrSummaryLocked        = &ServiceError{ErrorForbidden, "o resumo semanal ainda não está liberado"}
	ErrNotFound             = &ServiceError{ErrorNotFound, "registro não encontrado"}
	ErrNothingDue           = &ServiceError{ErrorConflict, "nenhum questionário agendado para hoje"}
	ErrDuplicateSubmission  = &ServiceError{ErrorConflict, "questionário já respondido hoje"}
	ErrDuplicateSummary     = &ServiceError{ErrorConflict, "resumo semanal já enviado nesta semana"}
	ErrEmailTaken           = &ServiceError{ErrorConflict, "e-mail já cadastrado"}
)

// ErrAIUnavailable means no AI narrative could be produced. It never reaches
// the client; the summary falls back to the deterministic narrative.
var ErrAIUnavailable = errors.New("ai unavailable")

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
