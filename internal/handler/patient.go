package handler

import (
	"net/http"

	"psi-tracker/internal/middleware"
	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// historyDays is the default range of GET /api/pacientes/:id/respostas.
const historyDays = 30

// PatientHandler serves the psychologist's view of their patients.
type PatientHandler struct {
	patients *service.PatientService
	daily    *service.DailyService
	weekly   *service.WeeklyService
	clock    *Clock
}

func NewPatientHandler(patients *service.PatientService, daily *service.DailyService, weekly *service.WeeklyService, clock *Clock) *PatientHandler {
	return &PatientHandler{patients: patients, daily: daily, weekly: weekly, clock: clock}
}

// owned resolves :id to a patient of the logged-in psychologist.
func (h *PatientHandler) owned(c *gin.Context) (*model.Patient, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	p, err := h.patients.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return p, true
}

// GET /api/pacientes
func (h *PatientHandler) List(c *gin.Context) {
	list, err := h.patients.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []model.Patient{}
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/pacientes
func (h *PatientHandler) Create(c *gin.Context) {
	var req model.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.patients.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/pacientes/:id
func (h *PatientHandler) Get(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/pacientes/:id
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.patients.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /api/pacientes/:id
func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.patients.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/pacientes/:id/agenda
func (h *PatientHandler) Schedule(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	cfg, err := h.patients.Schedule(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itens": cfg})
}

// PUT /api/pacientes/:id/agenda  body: {"itens":[{"dia":"tuesday","questionario":"questionario1"}, ...]}
func (h *PatientHandler) SetSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := h.patients.SetSchedule(c.Request.Context(), middleware.UserID(c), id, req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itens": cfg})
}

// GET /api/pacientes/:id/respostas?de=AAAA-MM-DD&ate=AAAA-MM-DD
func (h *PatientHandler) Responses(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	to := c.DefaultQuery("ate", h.clock.today())
	end, err := h.clock.date(to)
	if err != nil {
		fail(c, err)
		return
	}
	from := c.DefaultQuery("de", questionnaire.CalendarDate(end.AddDate(0, 0, -historyDays), h.clock.loc))
	if _, err := h.clock.date(from); err != nil {
		fail(c, err)
		return
	}
	rows, err := h.daily.FindRange(c.Request.Context(), p.ID, from, to)
	if err != nil {
		fail(c, err)
		return
	}
	if rows == nil {
		rows = []model.DailyResponse{}
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/pacientes/:id/pontuacoes?ate=AAAA-MM-DD
func (h *PatientHandler) Scores(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	asOf, err := h.clock.date(c.DefaultQuery("ate", h.clock.today()))
	if err != nil {
		fail(c, err)
		return
	}
	scores, err := h.weekly.Aggregate(c.Request.Context(), p.ID, asOf)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ScoresResponse{AsOf: questionnaire.CalendarDate(asOf, h.clock.loc), Scores: scores})
}

// GET /api/pacientes/:id/resumos
func (h *PatientHandler) Summaries(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	list, err := h.weekly.List(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []model.WeeklySummary{}
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/pacientes/:id/resumos/:resumoId/analise
func (h *PatientHandler) Regenerate(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	summaryID, ok := paramID(c, "resumoId")
	if !ok {
		return
	}
	ws, err := h.weekly.Regenerate(c.Request.Context(), p.ID, summaryID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}
