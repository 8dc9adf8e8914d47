package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/slack"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/conveyance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/conveyance-backend-go/internal/service/auth"
	billService "github.com/cmlabs-hris/conveyance-backend-go/internal/service/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/service/file"
	notificationService "github.com/cmlabs-hris/conveyance-backend-go/internal/service/notification"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})).With(
		slog.String("app", "conveyance-backend"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	qrCodeRepo := postgresql.NewQRCodeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	billRepo := postgresql.NewBillRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		slog.Error("Invalid JWT configuration", "error", err)
		os.Exit(1)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			slog.Error("Failed to initialize local storage", "error", err)
			os.Exit(1)
		}
	case "s3":
		fileStorage, err = storage.NewS3Storage(context.Background(), storage.S3Config{
			Bucket:   cfg.Storage.S3Bucket,
			Region:   cfg.Storage.S3Region,
			Endpoint: cfg.Storage.S3Endpoint,
		})
		if err != nil {
			slog.Error("Failed to initialize s3 storage", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unsupported storage type", "type", cfg.Storage.Type)
		os.Exit(1)
	}
	fileService := file.NewFileService(fileStorage)

	hub := sse.NewHub(10)
	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})
	if cfg.Slack.Enabled() {
		notifSvc = notificationService.WithAdminMirror(notifSvc, slack.NewClient(cfg.Slack.BotToken, cfg.Slack.AdminChannelID))
		slog.Info("Mirroring admin notifications to Slack", "channel", cfg.Slack.AdminChannelID)
	}

	loc := cfg.Location()
	authSvc := serviceAuth.NewAuthService(transactor, userRepo, JWTService, refreshTokenRepo)
	attendanceSvc := attendanceService.NewAttendanceService(transactor, attendanceRepo, qrCodeRepo, notifSvc, loc, cfg.Attendance.StaleAfter)
	billSvc := billService.NewBillService(transactor, billRepo, fileService, notifSvc, loc)

	scheduler := cron.NewScheduler(5 * time.Minute)
	cron.NewAttendanceJobs(attendanceSvc, cfg.Attendance.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start()

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
		},
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(JWTService, authSvc),
			QRCode:       appHTTP.NewQRCodeHandler(attendanceSvc),
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
			Bill:         appHTTP.NewBillHandler(billSvc, fileService, cfg.Storage.MaxUploadSize),
			Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	scheduler.Stop()
	notifSvc.Stop()
	slog.Info("Server exited")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
