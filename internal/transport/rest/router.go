package rest

import (
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/Ilan9903/Juris-IA/api"
	"github.com/Ilan9903/Juris-IA/internal/article"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/conversation"
	"github.com/Ilan9903/Juris-IA/internal/dashboard"
	"github.com/Ilan9903/Juris-IA/internal/document"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
	"github.com/Ilan9903/Juris-IA/internal/ratelimit"
	"github.com/Ilan9903/Juris-IA/internal/transport"
	"github.com/Ilan9903/Juris-IA/internal/transport/middleware"
	"github.com/Ilan9903/Juris-IA/internal/transport/swagger"
	"github.com/Ilan9903/Juris-IA/internal/user"
)

// Handlers groups everything the router mounts. RateLimit may be nil (limiting disabled).
type Handlers struct {
	Base         *transport.BaseHandler
	Health       *HealthHandler
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Conversation *conversation.Handler
	Document     *document.Handler
	Article      *article.Handler
	Prompt       *prompttemplate.Handler
	Dashboard    *dashboard.Handler
	RateLimit    *ratelimit.Middleware
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, allowedOrigins []string) {
	rbac := h.RBAC
	authed := auth.Authenticated

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(h.Base))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Base.WriteError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.Base.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", h.Health.healthCheckHandler)
	router.Get("/ping", h.Health.pingHandler)
	router.Get("/openapi.yml", api.Handler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/user", func(ur chi.Router) {
			ur.With(h.RateLimit.Limit("signup")).Post("/signup", h.Auth.Signup)
			ur.With(h.RateLimit.Limit("login")).Post("/login", h.Auth.Login)

			ur.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)
				pr.Get("/auth-status", authed(h.Auth.Status))
				pr.Get("/logout", authed(h.Auth.Logout))
				pr.Post("/verify-password", authed(h.Auth.VerifyPassword))
				pr.Put("/change-password", authed(h.Auth.ChangePassword))
				pr.Put("/updateprofile", authed(h.User.UpdateProfile))
				pr.Put("/update-status", authed(h.User.UpdateStatus))
				pr.Delete("/delete-account", authed(h.User.DeleteAccount))
			})
		})

		r.Route("/chat", func(cr chi.Router) {
			cr.Use(h.Auth.AuthMiddleware)
			cr.Get("/conversations", authed(h.Conversation.List))
			cr.Post("/conversations", authed(h.Conversation.Create))
			cr.Get("/conversations/{id}", authed(h.Conversation.Get))
			cr.Delete("/conversations/{id}", authed(h.Conversation.Delete))
			cr.Post("/conversations/{id}/messages", authed(h.Conversation.SendMessage))
			cr.Post("/new", authed(h.Conversation.New))
		})

		r.Route("/document-analysis", func(dr chi.Router) {
			dr.Use(h.Auth.AuthMiddleware)
			dr.Post("/analyze", authed(h.Document.Analyze))
		})

		r.Route("/articles", func(ar chi.Router) {
			ar.Get("/", h.Article.List)
			ar.Get("/categories", h.Article.Categories)
			ar.Get("/{id}", h.Article.Get)
			ar.Get("/{id}/pdf", h.Article.DownloadPDF)

			ar.Group(func(mr chi.Router) {
				mr.Use(h.Auth.AuthMiddleware)
				mr.Use(rbac.Require(auth.CanManageArticles))
				mr.Post("/", h.Article.Create)
				mr.Put("/{id}", h.Article.Update)
				mr.Delete("/{id}", h.Article.Delete)
				mr.Put("/{id}/pdf", h.Article.UploadPDF)
			})
		})

		r.Route("/admin", func(ar chi.Router) {
			ar.Use(h.Auth.AuthMiddleware)

			ar.Group(func(dr chi.Router) {
				dr.Use(rbac.Require(auth.CanViewAdminDashboard))
				dr.Get("/auth-status", authed(h.Auth.AdminStatus))
				dr.Get("/dashboard", authed(h.Dashboard.Dashboard))
			})

			ar.Group(func(ur chi.Router) {
				ur.Use(rbac.Require(auth.CanManageUsers))
				ur.Get("/users", h.User.List)
				ur.Post("/user", authed(h.User.Create))
				ur.Get("/user/{id}", h.User.Get)
				ur.Put("/user/{id}", authed(h.User.Update))
				ur.Delete("/user/{id}", authed(h.User.Delete))
			})

			ar.Group(func(pr chi.Router) {
				pr.Use(rbac.Require(auth.CanManagePrompts))
				pr.Post("/prompt", authed(h.Prompt.Create))
				pr.Get("/prompts", h.Prompt.List)
				pr.Get("/prompt/{id}", h.Prompt.Get)
				pr.Put("/prompt/{id}", authed(h.Prompt.Update))
				pr.Delete("/prompt/{id}", h.Prompt.Delete)
			})

			ar.Group(func(mr chi.Router) {
				mr.Use(rbac.Require(auth.CanManageArticles))
				mr.Get("/articles", h.Article.AdminList)
			})
		})
	})
}
