package main

import (
	"flag"
	"log/slog"
	"os"
	_ "time/tzdata"

	"psi-tracker/internal/config"
	"psi-tracker/internal/handler"
	"psi-tracker/internal/logger"
	"psi-tracker/internal/middleware"
	"psi-tracker/internal/model"
	"psi-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("timezone", "err", err)
		os.Exit(1)
	}
	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	patientSvc := service.NewPatientService(db)
	dailySvc := service.NewDailyService(db, patientSvc, loc)

	var completer service.Completer
	if aiSvc := service.NewAIService(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, cfg.AITimeout()); aiSvc.Configured() {
		completer = aiSvc
		slog.Info("ai narrative enabled", "model", cfg.AI.Model)
	}
	weeklySvc := service.NewWeeklyService(db, dailySvc, service.NewSummaryAssembler(completer, cfg.AITimeout()))

	raw, err := cfg.NewRawClient()
	if err != nil {
		slog.Warn("sdk client init failed", "err", err)
	}
	if raw != nil {
		catalogSync := service.NewCatalogSync(raw, cfg.MOI.DatabaseID, cfg.MOI.ResponsesTable, cfg.MOI.SummariesTable)
		dailySvc.SetMirror(catalogSync)
		weeklySvc.SetMirror(catalogSync)
		slog.Info("catalog sync enabled")
	}

	if cfg.App.TestMode {
		slog.Warn("test mode: date overrides accepted")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := handler.NewRouter(handler.Deps{
		Auth:     service.NewAuthService(db),
		Patients: patientSvc,
		Daily:    dailySvc,
		Weekly:   weeklySvc,
		Legacy:   service.NewLegacyService(dailySvc, patientSvc),
		JWT:      middleware.NewJWT(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		Clock:    handler.NewClock(loc, cfg.App.TestMode),
	})

	slog.Info("server starting", "addr", cfg.Addr(), "timezone", loc.String())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
