package prompttemplate_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
	promptPostgres "github.com/Ilan9903/Juris-IA/internal/prompttemplate/postgres"
	"github.com/Ilan9903/Juris-IA/internal/testutil"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

var _ = Describe("PromptTemplate Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		db, err := testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())
		admin, err := testutil.SeedUser(db, "Admin", "admin@example.com", "admin")
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := prompttemplate.NewService(promptPostgres.NewPromptTemplateRepository(db), slogger)
		handler := prompttemplate.NewHandler(transport.NewBaseHandler(slogger), service)

		ac := &auth.AuthContext{User: auth.User{ID: admin.ID}, Permissions: auth.NewPermissionSet(auth.CanManagePrompts)}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.WithAuthContext(r.Context(), ac)))
			})
		})
		router.Post("/prompt", auth.Authenticated(handler.Create))
		router.Get("/prompts", handler.List)
		router.Get("/prompt/{id}", handler.Get)
		router.Put("/prompt/{id}", auth.Authenticated(handler.Update))
		router.Delete("/prompt/{id}", handler.Delete)
	})

	send := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	It("runs the create, read, update, delete cycle", func() {
		w := send(http.MethodPost, "/prompt", map[string]string{"name": "GREETING", "content": "Bonjour"})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created prompttemplate.PromptResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Prompt.CreatedBy.Email).To(Equal("admin@example.com"))

		w = send(http.MethodGet, "/prompts", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var list prompttemplate.PromptsResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Prompts).To(HaveLen(1))

		w = send(http.MethodPut, "/prompt/1", map[string]string{"status": "archived"})
		Expect(w.Code).To(Equal(http.StatusOK))

		w = send(http.MethodDelete, "/prompt/1", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = send(http.MethodGet, "/prompt/1", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 400 for malformed ids and statuses", func() {
		Expect(send(http.MethodGet, "/prompt/abc", nil).Code).To(Equal(http.StatusBadRequest))

		send(http.MethodPost, "/prompt", map[string]string{"name": "GREETING", "content": "Bonjour"})
		Expect(send(http.MethodPut, "/prompt/1", map[string]string{"status": "live"}).Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 409 for duplicate names", func() {
		send(http.MethodPost, "/prompt", map[string]string{"name": "GREETING", "content": "Bonjour"})
		Expect(send(http.MethodPost, "/prompt", map[string]string{"name": "GREETING", "content": "Salut"}).Code).To(Equal(http.StatusConflict))
	})
})
