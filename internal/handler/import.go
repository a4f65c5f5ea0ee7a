package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/middleware"
	"psi-tracker/internal/model"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	previewTTL     = 10 * time.Minute
	maxImportBytes = 8 << 20
)

// ImportHandler runs the two-step legacy import: preview classifies an
// uploaded export and caches it under a token, confirm writes it.
type ImportHandler struct {
	legacy *service.LegacyService
	cache  sync.Map // token -> *previewCache
	now    func() time.Time
}

type previewCache struct {
	psychologistID int
	rows           []model.ImportPreviewRow
	createdAt      time.Time
}

func NewImportHandler(legacy *service.LegacyService) *ImportHandler {
	return &ImportHandler{legacy: legacy, now: time.Now}
}

// POST /api/import/preview  multipart field "file": JSON array of legacy rows
func (h *ImportHandler) Preview(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "envie o arquivo no campo file"})
		return
	}
	if file.Size > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "arquivo muito grande"})
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, err)
		return
	}
	var rows []model.LegacyRow
	if err := json.Unmarshal(data, &rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arquivo deve conter uma lista JSON", "detalhe": err.Error()})
		return
	}
	logger.Ctx(c.Request.Context()).Info("import.preview", "file", file.Filename, "rows", len(rows))

	uid := middleware.UserID(c)
	preview, err := h.legacy.ClassifyLegacy(c.Request.Context(), uid, rows)
	if err != nil {
		fail(c, err)
		return
	}

	h.expire()
	token := uuid.NewString()
	h.cache.Store(token, &previewCache{psychologistID: uid, rows: preview, createdAt: h.now()})
	c.JSON(http.StatusOK, model.ImportPreview{Token: token, Rows: preview})
}

// POST /api/import/confirm  body: {"token":"..."}
func (h *ImportHandler) Confirm(c *gin.Context) {
	var req model.ImportConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	val, ok := h.cache.LoadAndDelete(req.Token)
	if !ok || h.expired(val.(*previewCache)) || val.(*previewCache).psychologistID != middleware.UserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prévia expirada, envie o arquivo novamente"})
		return
	}
	res, err := h.legacy.ImportLegacy(c.Request.Context(), val.(*previewCache).rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ImportHandler) expired(p *previewCache) bool {
	return h.now().Sub(p.createdAt) > previewTTL
}

// expire drops stale previews. It runs on every new preview instead of on a
// timer.
func (h *ImportHandler) expire() {
	h.cache.Range(func(k, v any) bool {
		if h.expired(v.(*previewCache)) {
			h.cache.Delete(k)
		}
		return true
	})
}
