package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/questionnaire"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// fail writes err as JSON. Service errors keep their status; anything else
// is logged and hidden behind a 500.
func fail(c *gin.Context, err error) {
	if se, ok := service.AsServiceError(err); ok {
		body := gin.H{"error": se.Message}
		if err.Error() != se.Message {
			body["detalhe"] = err.Error()
		}
		c.JSON(se.Status(), body)
		return
	}
	logger.Ctx(c.Request.Context()).Error("request.failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "requisição inválida", "detalhe": err.Error()})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return 0, false
	}
	return id, true
}

// Clock decides the instant a request is evaluated at. Outside test mode it
// is always the wall clock.
type Clock struct {
	loc      *time.Location
	testMode bool
	now      func() time.Time
}

func NewClock(loc *time.Location, testMode bool) *Clock {
	return &Clock{loc: loc, testMode: testMode, now: time.Now}
}

// At honours an explicit date, or the data query parameter, in test mode.
func (k *Clock) At(c *gin.Context, override string) (time.Time, error) {
	if override == "" {
		override = c.Query("data")
	}
	if override == "" || !k.testMode {
		return k.now(), nil
	}
	return k.date(override)
}

func (k *Clock) date(s string) (time.Time, error) {
	d, err := questionnaire.ParseDate(s, k.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", service.ErrInvalidDate, s)
	}
	return d, nil
}

func (k *Clock) today() string {
	return questionnaire.CalendarDate(k.now(), k.loc)
}
