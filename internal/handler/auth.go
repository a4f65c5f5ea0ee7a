package handler

import (
	"net/http"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/middleware"
	"psi-tracker/internal/model"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *service.AuthService
	jwt  *middleware.JWT
}

func NewAuthHandler(auth *service.AuthService, jwt *middleware.JWT) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt}
}

// POST /api/psicologos/registro
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Ctx(c.Request.Context()).Info("register.ok", "uid", p.ID)
	h.issue(c, http.StatusCreated, p.ID, p.Name, middleware.RolePsychologist)
}

// POST /api/psicologos/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Ctx(c.Request.Context()).Warn("login.failed", "email", req.Email)
		fail(c, err)
		return
	}
	logger.Ctx(c.Request.Context()).Info("login.ok", "uid", p.ID)
	h.issue(c, http.StatusOK, p.ID, p.Name, middleware.RolePsychologist)
}

// POST /api/pacientes/login
func (h *AuthHandler) PatientLogin(c *gin.Context) {
	var req model.PatientLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.auth.PatientLogin(c.Request.Context(), req.Code)
	if err != nil {
		logger.Ctx(c.Request.Context()).Warn("patient_login.failed")
		fail(c, err)
		return
	}
	logger.Ctx(c.Request.Context()).Info("patient_login.ok", "uid", p.ID)
	h.issue(c, http.StatusOK, p.ID, p.Name, middleware.RolePatient)
}

func (h *AuthHandler) issue(c *gin.Context, status, id int, name, role string) {
	token, err := h.jwt.Sign(id, name, role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, model.LoginResponse{Token: token, User: model.User{ID: id, Name: name, Role: role}})
}
