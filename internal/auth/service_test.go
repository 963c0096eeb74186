package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
)

var _ = Describe("AuthService", func() {
	var (
		ctx      context.Context
		service  *auth.Service
		mockRepo *MockRepository
		tokenGen *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		tokenGen = auth.NewJWTTokenGenerator(testSecret, time.Hour)
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(mockRepo, tokenGen, bcrypt.MinCost, slogger)
	})

	signup := func(email string) *auth.User {
		u, _, err := service.Signup(ctx, auth.SignupDTO{Name: "Alice", Email: email, Password: "secret123"})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Signup", func() {
		It("stores a bcrypt hash and marks the user online", func() {
			u, token, err := service.Signup(ctx, auth.SignupDTO{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
			Expect(u.Role).To(Equal(auth.RoleUser))
			Expect(u.Status).To(Equal(auth.StatusOnline))
			Expect(u.ProfileImage).To(Equal(auth.DefaultProfileImage))

			stored, _ := mockRepo.GetByID(ctx, u.ID)
			Expect(stored.PasswordHash).NotTo(Equal("secret123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123"))).To(Succeed())
		})

		It("binds the token to the new user", func() {
			u, token, err := service.Signup(ctx, auth.SignupDTO{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())

			claims, err := tokenGen.Validate(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.ID).To(Equal(u.ID))
			Expect(claims.Email).To(Equal("alice@example.com"))
			Expect(claims.Role).To(Equal("user"))
			Expect(claims.Name).To(Equal("Alice"))
		})

		It("returns a conflict for a registered email", func() {
			signup("alice@example.com")
			_, _, err := service.Signup(ctx, auth.SignupDTO{Name: "Other", Email: "alice@example.com", Password: "secret123"})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("rejects malformed input with field errors", func() {
			_, _, err := service.Signup(ctx, auth.SignupDTO{Name: "", Email: "not-an-email", Password: "123"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors).To(HaveLen(3))
		})
	})

	Describe("Login", func() {
		It("succeeds with the signup credentials", func() {
			created := signup("alice@example.com")
			Expect(mockRepo.UpdateStatus(ctx, created.ID, "offline")).To(Succeed())

			u, token, err := service.Login(ctx, auth.LoginDTO{Email: "alice@example.com", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
			Expect(u.ID).To(Equal(created.ID))
			Expect(u.Status).To(Equal(auth.StatusOnline))
			Expect(mockRepo.status(created.ID)).To(Equal("online"))
		})

		It("returns not found for an unknown email", func() {
			_, _, err := service.Login(ctx, auth.LoginDTO{Email: "ghost@example.com", Password: "secret123"})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("returns unauthorized for a wrong password", func() {
			signup("alice@example.com")
			_, _, err := service.Login(ctx, auth.LoginDTO{Email: "alice@example.com", Password: "wrong-password"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("wraps repository failures", func() {
			mockRepo.fail(errors.New("connection reset"))
			_, _, err := service.Login(ctx, auth.LoginDTO{Email: "alice@example.com", Password: "secret123"})
			Expect(err).To(HaveOccurred())
			_, isAppErr := internal.IsAppError(err)
			Expect(isAppErr).To(BeFalse())
		})
	})

	Describe("Resolve", func() {
		It("reloads role and permissions from storage", func() {
			u := signup("alice@example.com")
			mockRepo.permissions[u.ID] = []string{"CAN_MANAGE_ARTICLES"}
			mockRepo.users[u.ID].Role = "redacteur"
			token, err := tokenGen.Generate(u)
			Expect(err).NotTo(HaveOccurred())

			ac, err := service.Resolve(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(ac.User.Role).To(Equal(auth.RoleRedacteur))
			Expect(ac.Permissions.Has(auth.CanManageArticles)).To(BeTrue())
		})

		It("rejects tokens of deleted users", func() {
			token, err := tokenGen.Generate(&auth.User{ID: 99, Email: "gone@example.com"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Resolve(ctx, token)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(401))
		})

		It("rejects tampered tokens", func() {
			_, err := service.Resolve(ctx, "not.a.jwt")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("reports expired tokens", func() {
			u := signup("alice@example.com")
			expired := auth.NewJWTTokenGenerator(testSecret, time.Hour)
			expired.TTL = -time.Minute
			token, err := expired.Generate(u)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Resolve(ctx, token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})
	})

	Describe("Logout", func() {
		It("flips an online user offline", func() {
			u := signup("alice@example.com")
			Expect(service.Logout(ctx, u.ID)).To(Succeed())
			Expect(mockRepo.status(u.ID)).To(Equal("offline"))
		})

		It("leaves idle users untouched", func() {
			u := signup("alice@example.com")
			Expect(mockRepo.UpdateStatus(ctx, u.ID, "idle")).To(Succeed())
			Expect(service.Logout(ctx, u.ID)).To(Succeed())
			Expect(mockRepo.status(u.ID)).To(Equal("idle"))
		})
	})

	Describe("VerifyPassword", func() {
		It("requires a password", func() {
			u := signup("alice@example.com")
			err := service.VerifyPassword(ctx, u.ID, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a mismatch", func() {
			u := signup("alice@example.com")
			Expect(service.VerifyPassword(ctx, u.ID, "nope-nope")).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("accepts the right password", func() {
			u := signup("alice@example.com")
			Expect(service.VerifyPassword(ctx, u.ID, "secret123")).To(Succeed())
		})
	})

	Describe("ChangePassword", func() {
		It("rejects short new passwords with 422", func() {
			u := signup("alice@example.com")
			err := service.ChangePassword(ctx, u.ID, auth.ChangePasswordDTO{CurrentPassword: "secret123", NewPassword: "abc"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
		})

		It("rejects a wrong current password with 401", func() {
			u := signup("alice@example.com")
			err := service.ChangePassword(ctx, u.ID, auth.ChangePasswordDTO{CurrentPassword: "wrong-one", NewPassword: "brand-new"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(401))
		})

		It("stores the new hash", func() {
			u := signup("alice@example.com")
			Expect(service.ChangePassword(ctx, u.ID, auth.ChangePasswordDTO{CurrentPassword: "secret123", NewPassword: "brand-new"})).To(Succeed())

			_, _, err := service.Login(ctx, auth.LoginDTO{Email: "alice@example.com", Password: "brand-new"})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
