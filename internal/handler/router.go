package handler

import (
	"psi-tracker/internal/middleware"
	"psi-tracker/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth     *service.AuthService
	Patients *service.PatientService
	Daily    *service.DailyService
	Weekly   *service.WeeklyService
	Legacy   *service.LegacyService
	JWT      *middleware.JWT
	Clock    *Clock
}

func NewRouter(d Deps) *gin.Engine {
	authH := NewAuthHandler(d.Auth, d.JWT)
	patientH := NewPatientHandler(d.Patients, d.Daily, d.Weekly, d.Clock)
	dailyH := NewDailyHandler(d.Daily, d.Weekly, d.Clock)
	importH := NewImportHandler(d.Legacy)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"X-New-Token", middleware.HeaderRequestID},
		AllowCredentials: true,
	}))

	r.POST("/api/psicologos/registro", authH.Register)
	r.POST("/api/psicologos/login", authH.Login)
	r.POST("/api/pacientes/login", authH.PatientLogin)
	r.GET("/api/questionarios", ListQuestionnaires)
	r.GET("/api/questionarios/:id", GetQuestionnaire)

	api := r.Group("/api", d.JWT.Auth())

	clin := api.Group("", middleware.RequireRole(middleware.RolePsychologist))
	clin.GET("/pacientes", patientH.List)
	clin.POST("/pacientes", patientH.Create)
	clin.GET("/pacientes/:id", patientH.Get)
	clin.PUT("/pacientes/:id", patientH.Update)
	clin.DELETE("/pacientes/:id", patientH.Delete)
	clin.GET("/pacientes/:id/agenda", patientH.Schedule)
	clin.PUT("/pacientes/:id/agenda", patientH.SetSchedule)
	clin.GET("/pacientes/:id/respostas", patientH.Responses)
	clin.GET("/pacientes/:id/pontuacoes", patientH.Scores)
	clin.GET("/pacientes/:id/resumos", patientH.Summaries)
	clin.POST("/pacientes/:id/resumos/:resumoId/analise", patientH.Regenerate)
	clin.POST("/import/preview", importH.Preview)
	clin.POST("/import/confirm", importH.Confirm)

	pat := api.Group("/paciente", middleware.RequireRole(middleware.RolePatient))
	pat.GET("/hoje", dailyH.Today)
	pat.POST("/respostas", dailyH.Answer)
	pat.GET("/resumo/status", dailyH.SummaryStatus)
	pat.POST("/resumo", dailyH.SubmitSummary)

	return r
}
