package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         AuthHandler
	QRCode       QRCodeHandler
	Attendance   AttendanceHandler
	Bill         BillHandler
	Notification NotificationHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
}

func NewRouter(JWTService jwt.Service, cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "conveyance-backend"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// Authenticated by its own short-lived query token
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/qr-codes", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionQRCodeManage)).Post("/", h.QRCode.Create)
				r.Get("/{id}", h.QRCode.Get)
				r.Get("/{id}/payload", h.QRCode.Payload)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendancePunch))
					r.Post("/punch-in", h.Attendance.PunchIn)
					r.Post("/punch-out", h.Attendance.PunchOut)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/my", h.Attendance.GetMyAttendance)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/summary", h.Attendance.MonthlySummary)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
			})

			r.Route("/bills", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionBillSubmit))
					r.Post("/", h.Bill.Submit)
					r.Post("/attachments", h.Bill.UploadAttachment)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionBillViewOwn))
					r.Get("/my", h.Bill.GetMyBills)
					r.Get("/attachments/*", h.Bill.DownloadAttachment)
					r.Get("/{id}", h.Bill.Get)
				})

				r.With(middleware.RequirePermission(user.PermissionBillViewAll)).Get("/", h.Bill.List)

				// Admin decisions
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionBillDecide))
					r.Put("/{id}/approve", h.Bill.Approve)
					r.Put("/{id}/revalidate", h.Bill.Revalidate)
					r.Put("/{id}/reject", h.Bill.Reject)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Put("/read-all", h.Notification.MarkAllAsRead)
				r.Get("/sse-token", h.Notification.GetSSEToken)
			})
		})
	})
	return r
}
