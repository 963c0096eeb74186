package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/article"
	articlePostgres "github.com/Ilan9903/Juris-IA/internal/article/postgres"
	"github.com/Ilan9903/Juris-IA/internal/assistant"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	authPostgres "github.com/Ilan9903/Juris-IA/internal/auth/postgres"
	"github.com/Ilan9903/Juris-IA/internal/conversation"
	conversationPostgres "github.com/Ilan9903/Juris-IA/internal/conversation/postgres"
	"github.com/Ilan9903/Juris-IA/internal/core/events"
	"github.com/Ilan9903/Juris-IA/internal/dashboard"
	dashboardPostgres "github.com/Ilan9903/Juris-IA/internal/dashboard/postgres"
	"github.com/Ilan9903/Juris-IA/internal/document"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
	promptPostgres "github.com/Ilan9903/Juris-IA/internal/prompttemplate/postgres"
	"github.com/Ilan9903/Juris-IA/internal/storage"
	"github.com/Ilan9903/Juris-IA/internal/storage/storagetest"
	"github.com/Ilan9903/Juris-IA/internal/testutil"
	"github.com/Ilan9903/Juris-IA/internal/transport"
	"github.com/Ilan9903/Juris-IA/internal/transport/rest"
	"github.com/Ilan9903/Juris-IA/internal/user"
	userPostgres "github.com/Ilan9903/Juris-IA/internal/user/postgres"
)

const cookieSecret = "0123456789abcdef0123456789abcdef"

// client is one browser: its own cookie jar against the shared server.
type client struct {
	http *http.Client
	base string
}

func (c *client) do(method, path string, body interface{}) (int, []byte) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	Expect(err).NotTo(HaveOccurred())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp.StatusCode, out
}

var _ = Describe("Router", func() {
	var (
		db     *gorm.DB
		server *httptest.Server
	)

	newClient := func() *client {
		jar, err := cookiejar.New(nil)
		Expect(err).NotTo(HaveOccurred())
		return &client{
			http: &http.Client{
				Jar: jar,
				CheckRedirect: func(*http.Request, []*http.Request) error {
					return http.ErrUseLastResponse
				},
			},
			base: server.URL,
		}
	}

	signup := func(c *client, name, email string) int64 {
		status, body := c.do(http.MethodPost, "/api/v1/user/signup", map[string]string{
			"name": name, "email": email, "password": "secret123",
		})
		Expect(status).To(Equal(http.StatusCreated), string(body))
		var profile auth.Profile
		Expect(json.Unmarshal(body, &profile)).To(Succeed())
		return profile.ID
	}

	grant := func(userID int64, perms ...auth.Permission) {
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			names = append(names, string(p))
		}
		Expect(authPostgres.GrantPermissions(db, userID, names, nil)).To(Succeed())
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		security := internal.SecurityConfig{
			JWTSecret:     cookieSecret,
			CookieSecret:  cookieSecret,
			TokenDuration: time.Hour,
		}
		uploads := internal.UploadsConfig{Dir: GinkgoT().TempDir(), MaxSizeMB: 5}
		base := transport.NewBaseHandler(slogger)
		bus := events.NewEventBus(slogger)
		media := storage.NewMedia(storagetest.NewMemoryStore(), internal.StorageConfig{PublicURL: "https://files.example.com"}, slogger)
		storage.RegisterCleanup(bus, media)
		llm := assistant.NewClient(fixedCompleter{title: "Définition du contrat", reply: "Un contrat est un accord de volontés."}, "", slogger)

		authService := auth.NewService(authPostgres.NewRepository(db), auth.NewJWTTokenGenerator(security.JWTSecret, security.TokenDuration), bcrypt.MinCost, slogger)
		session := auth.NewCookieSession(security, false)
		promptService := prompttemplate.NewService(promptPostgres.NewPromptTemplateRepository(db), slogger)

		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Base:         base,
			Health:       rest.NewHealthHandler(sqlDB, nil),
			Auth:         auth.NewHandler(base, authService, session),
			RBAC:         auth.NewRBACAuthorization(base),
			User:         user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(db), media, authService, bus, slogger), session, uploads),
			Conversation: conversation.NewHandler(base, conversation.NewService(conversationPostgres.NewConversationRepository(db), llm, promptService, slogger)),
			Document:     document.NewHandler(base, document.NewService(document.Extractor{}, llm, 0, slogger), uploads),
			Article:      article.NewHandler(base, article.NewService(articlePostgres.NewArticleRepository(db), media, bus, slogger), uploads),
			Prompt:       prompttemplate.NewHandler(base, promptService),
			Dashboard:    dashboard.NewHandler(base, dashboard.NewService(dashboardPostgres.NewDashboardRepository(sqlx.NewDb(sqlDB, "sqlite3")), slogger)),
		}, []string{"http://localhost:5173"})

		server = httptest.NewServer(router)
		DeferCleanup(server.Close)
	})

	It("answers health probes", func() {
		c := newClient()
		status, body := c.do(http.MethodGet, "/health", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`"healthy"`))

		status, _ = c.do(http.MethodGet, "/api/v1/ping", nil)
		Expect(status).To(Equal(http.StatusOK))

		status, body = c.do(http.MethodGet, "/openapi.yml", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(HavePrefix("openapi:"))
	})

	It("signs up, logs in, chats and gets a generated title", func() {
		c := newClient()
		signup(c, "Lina", "lina@juris.fr")

		status, _ := c.do(http.MethodGet, "/api/v1/user/logout", nil)
		Expect(status).To(Equal(http.StatusOK))
		status, _ = c.do(http.MethodGet, "/api/v1/user/auth-status", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))

		status, body := c.do(http.MethodPost, "/api/v1/user/login", map[string]string{
			"email": "lina@juris.fr", "password": "secret123",
		})
		Expect(status).To(Equal(http.StatusOK), string(body))

		status, body = c.do(http.MethodPost, "/api/v1/chat/conversations", nil)
		Expect(status).To(Equal(http.StatusCreated), string(body))
		var created conversation.Summary
		Expect(json.Unmarshal(body, &created)).To(Succeed())
		Expect(created.Title).To(Equal(conversation.DefaultTitle))

		status, body = c.do(http.MethodPost, "/api/v1/chat/conversations/"+created.ID+"/messages", map[string]string{
			"message": "What is a contract?",
		})
		Expect(status).To(Equal(http.StatusOK), string(body))
		var result conversation.SendResult
		Expect(json.Unmarshal(body, &result)).To(Succeed())
		Expect(result.Messages).NotTo(BeEmpty())
		Expect(result.Messages[len(result.Messages)-1].Role).To(Equal(assistant.RoleAssistant))

		status, body = c.do(http.MethodGet, "/api/v1/chat/conversations/"+created.ID, nil)
		Expect(status).To(Equal(http.StatusOK))
		var loaded conversation.ConversationResponse
		Expect(json.Unmarshal(body, &loaded)).To(Succeed())
		Expect(loaded.Title).To(Equal("Définition du contrat"))
		Expect(loaded.Messages).To(HaveLen(2))

		status, _ = c.do(http.MethodDelete, "/api/v1/chat/conversations/00000000-0000-0000-0000-000000000000", nil)
		Expect(status).To(Equal(http.StatusOK))
	})

	It("gates admin routes on permissions", func() {
		anonymous := newClient()
		status, _ := anonymous.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))

		c := newClient()
		id := signup(c, "Nora", "nora@juris.fr")
		status, _ = c.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
		Expect(status).To(Equal(http.StatusForbidden))
		status, _ = c.do(http.MethodPost, "/api/v1/articles", map[string]string{"title": "t", "content": "c"})
		Expect(status).To(Equal(http.StatusForbidden))

		grant(id, auth.CanViewAdminDashboard)
		status, body := c.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
		Expect(status).To(Equal(http.StatusOK), string(body))
		Expect(string(body)).To(ContainSubstring(dashboard.WelcomeMessage))

		status, _ = c.do(http.MethodGet, "/api/v1/admin/users", nil)
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("filters articles by category and search", func() {
		editor := newClient()
		id := signup(editor, "Eva", "eva@juris.fr")
		grant(id, auth.CanManageArticles)

		for _, a := range []map[string]interface{}{
			{"title": "Le CONSENT sous le RGPD", "content": "Base légale", "category": []string{"RGPD"}},
			{"title": "Registre", "content": "Recueil du consentement explicite", "category": []string{"RGPD", "Données"}},
			{"title": "Cookies", "content": "Durée de conservation", "category": []string{"RGPD"}},
			{"title": "Consentement au contrat", "content": "Vices du consentement", "category": []string{"Contrats"}},
		} {
			status, body := editor.do(http.MethodPost, "/api/v1/articles", a)
			Expect(status).To(Equal(http.StatusCreated), string(body))
		}

		visitor := newClient()
		status, body := visitor.do(http.MethodGet, "/api/v1/articles?category=RGPD&search=consent&page=1&limit=5", nil)
		Expect(status).To(Equal(http.StatusOK), string(body))

		var page article.ArticlePage
		Expect(json.Unmarshal(body, &page)).To(Succeed())
		Expect(page.TotalArticles).To(BeEquivalentTo(2))
		for _, a := range page.Articles {
			Expect(a.Category).To(ContainElement("RGPD"))
			text := strings.ToLower(a.Title + " " + a.Content)
			Expect(text).To(ContainSubstring("consent"))
		}

		status, body = visitor.do(http.MethodGet, "/api/v1/articles?limit=3", nil)
		Expect(status).To(Equal(http.StatusOK))
		var carousel []article.Article
		Expect(json.Unmarshal(body, &carousel)).To(Succeed())
		Expect(len(carousel)).To(BeNumerically("<=", 3))
	})

	It("rate limits nothing when no limiter is configured", func() {
		signup(newClient(), "Sami", "sami@juris.fr")
		c := newClient()
		for i := 0; i < 3; i++ {
			status, _ := c.do(http.MethodPost, "/api/v1/user/login", map[string]string{"email": "sami@juris.fr", "password": "wrong123"})
			Expect(status).To(Equal(http.StatusUnauthorized))
		}
	})

	It("returns the error envelope for unknown routes", func() {
		status, body := newClient().do(http.MethodGet, "/api/v1/nope", nil)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(string(body)).To(ContainSubstring(`"error"`))
	})
})
