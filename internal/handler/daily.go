package handler

import (
	"net/http"

	"psi-tracker/internal/middleware"
	"psi-tracker/internal/model"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// DailyHandler serves the logged-in patient.
type DailyHandler struct {
	daily  *service.DailyService
	weekly *service.WeeklyService
	clock  *Clock
}

func NewDailyHandler(daily *service.DailyService, weekly *service.WeeklyService, clock *Clock) *DailyHandler {
	return &DailyHandler{daily: daily, weekly: weekly, clock: clock}
}

// GET /api/paciente/hoje
func (h *DailyHandler) Today(c *gin.Context) {
	at, err := h.clock.At(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	occ, err := h.daily.Today(c.Request.Context(), middleware.UserID(c), at)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

// POST /api/paciente/respostas  body: {"questionario":"questionario1","respostas":[0,1,...]}
func (h *DailyHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	at, err := h.clock.At(c, req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	r, err := h.daily.Submit(ctx, uid, at, req.QuestionnaireID, req.Answers)
	if err != nil {
		fail(c, err)
		return
	}
	st, err := h.weekly.Status(ctx, uid, at)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.AnswerResponse{Response: r, ShowSummary: st.ShowSummary, WeekResponses: st.WeekResponses})
}

// GET /api/paciente/resumo/status
func (h *DailyHandler) SummaryStatus(c *gin.Context) {
	at, err := h.clock.At(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	st, err := h.weekly.Status(c.Request.Context(), middleware.UserID(c), at)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// POST /api/paciente/resumo  body: {"textoResumo":"...","textoExpectativa":"..."}
func (h *DailyHandler) SubmitSummary(c *gin.Context) {
	var req model.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	at, err := h.clock.At(c, req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	st, err := h.weekly.Status(ctx, uid, at)
	if err != nil {
		fail(c, err)
		return
	}
	if !st.ShowSummary {
		if st.WeekResponses >= service.SummaryUnlockCount {
			fail(c, service.ErrDuplicateSummary)
		} else {
			fail(c, service.ErrSummaryLocked)
		}
		return
	}
	ws, err := h.weekly.Submit(ctx, uid, at, req.TextoResumo, req.TextoExpectativa)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}
