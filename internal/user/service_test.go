package user_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
	"github.com/Ilan9903/Juris-IA/internal/core/events"
	"github.com/Ilan9903/Juris-IA/internal/storage"
	"github.com/Ilan9903/Juris-IA/internal/storage/storagetest"
	"github.com/Ilan9903/Juris-IA/internal/testutil"
	"github.com/Ilan9903/Juris-IA/internal/user"
	userPostgres "github.com/Ilan9903/Juris-IA/internal/user/postgres"
)

const publicURL = "https://cdn.example.com/bucket"

func writeImage(dir string) *user.Image {
	path := filepath.Join(dir, "avatar.png")
	Expect(os.WriteFile(path, []byte("\x89PNG fake"), 0o600)).To(Succeed())
	return &user.Image{Path: path, ContentType: "image/png"}
}

var _ = Describe("User Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		store     *storagetest.MemoryStore
		publisher *recordingPublisher
		service   *user.Service
		admin     *userDatamodel.User
		member    *userDatamodel.User
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		admin, err = testutil.SeedUser(db, "Admin", "admin@example.com", "admin")
		Expect(err).NotTo(HaveOccurred())
		member, err = testutil.SeedUser(db, "Member", "member@example.com", "user")
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		store = storagetest.NewMemoryStore()
		media := storage.NewMedia(store, internal.StorageConfig{PublicURL: publicURL}, slogger)
		publisher = &recordingPublisher{}
		service = user.NewService(userPostgres.NewUserRepository(db), media, plainHasher{}, publisher, slogger)
	})

	Describe("UpdateProfile", func() {
		It("updates name, email and status", func() {
			u, err := service.UpdateProfile(ctx, member.ID, user.UpdateProfileDTO{
				Name:   "Renamed",
				Email:  "renamed@example.com",
				Status: "idle",
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Renamed"))
			Expect(u.Email).To(Equal("renamed@example.com"))
			Expect(u.Status).To(Equal(auth.StatusIdle))
			Expect(u.ProfileImage).To(Equal(auth.DefaultProfileImage))
		})

		It("rejects an email owned by someone else", func() {
			_, err := service.UpdateProfile(ctx, member.ID, user.UpdateProfileDTO{Email: "admin@example.com"}, nil)
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("rejects unknown statuses", func() {
			_, err := service.UpdateProfile(ctx, member.ID, user.UpdateProfileDTO{Status: "busy"}, nil)
			Expect(err).To(MatchError(internal.ErrInvalidStatus))
		})

		It("stores a new picture and removes the previous one", func() {
			first, err := service.UpdateProfile(ctx, member.ID, user.UpdateProfileDTO{}, writeImage(GinkgoT().TempDir()))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.ProfileImage).To(HavePrefix(publicURL + "/" + storage.FolderUsers + "/"))
			Expect(store.Keys()).To(HaveLen(1))

			second, err := service.UpdateProfile(ctx, member.ID, user.UpdateProfileDTO{}, writeImage(GinkgoT().TempDir()))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ProfileImage).NotTo(Equal(first.ProfileImage))

			key, ok := storage.NewMedia(store, internal.StorageConfig{PublicURL: publicURL}, nil).KeyFromURL(second.ProfileImage)
			Expect(ok).To(BeTrue())
			Expect(store.Keys()).To(ConsistOf(key))
		})

		It("refuses files that are not images", func() {
			img := writeImage(GinkgoT().TempDir())
			img.ContentType = "application/pdf"
			_, err := service.UpdateProfile(ctx, member.ID, user.UpdateProfileDTO{}, img)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnsupportedFile))
			Expect(store.Keys()).To(BeEmpty())
		})
	})

	Describe("UpdateStatus", func() {
		It("accepts the three known statuses only", func() {
			u, err := service.UpdateStatus(ctx, member.ID, user.UpdateStatusDTO{Status: "online"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Status).To(Equal(auth.StatusOnline))

			_, err = service.UpdateStatus(ctx, member.ID, user.UpdateStatusDTO{Status: ""})
			Expect(err).To(MatchError(internal.ErrInvalidStatus))
		})
	})

	Describe("Create", func() {
		It("grants the role's default permissions", func() {
			u, err := service.Create(ctx, admin.ID, user.CreateUserDTO{
				Name: "Writer", Email: "writer@example.com", Password: "secret1", Role: "redacteur",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleRedacteur))
			Expect(u.Permissions).To(ConsistOf(string(auth.CanViewAdminDashboard), string(auth.CanManageArticles)))

			var stored userDatamodel.User
			Expect(db.First(&stored, u.ID).Error).To(Succeed())
			Expect(stored.PasswordHash).To(Equal("hashed:secret1"))
		})

		It("rejects invalid roles and duplicate emails", func() {
			_, err := service.Create(ctx, admin.ID, user.CreateUserDTO{
				Name: "X", Email: "x@example.com", Password: "secret1", Role: "superuser",
			})
			Expect(err).To(MatchError(internal.ErrInvalidRole))

			_, err = service.Create(ctx, admin.ID, user.CreateUserDTO{
				Name: "X", Email: "member@example.com", Password: "secret1", Role: "user",
			})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("requires every field", func() {
			_, err := service.Create(ctx, admin.ID, user.CreateUserDTO{Email: "x@example.com"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
		})
	})

	Describe("Update", func() {
		It("re-grants permissions when the role changes", func() {
			u, err := service.Update(ctx, admin.ID, member.ID, user.AdminUpdateUserDTO{Role: "admin"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(HaveLen(len(auth.AllPermissions)))

			u, err = service.Update(ctx, admin.ID, member.ID, user.AdminUpdateUserDTO{Role: "user"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(BeEmpty())
		})

		It("forbids admins from dropping their own admin role", func() {
			_, err := service.Update(ctx, admin.ID, admin.ID, user.AdminUpdateUserDTO{Role: "user"}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("returns not found for unknown users", func() {
			_, err := service.Update(ctx, admin.ID, 999, user.AdminUpdateUserDTO{Name: "Ghost"}, nil)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("forbids self-deletion", func() {
			err := service.Delete(ctx, admin.ID, admin.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSelfModification))
		})

		It("removes the user with their conversations and announces it", func() {
			conv := &conversationDatamodel.Conversation{ID: "44444444-4444-4444-4444-444444444444", OwnerID: member.ID, Title: "t"}
			Expect(db.Create(conv).Error).To(Succeed())
			Expect(db.Create(&conversationDatamodel.Message{ConversationID: conv.ID, Role: "user", Content: "hi"}).Error).To(Succeed())

			Expect(service.Delete(ctx, admin.ID, member.ID)).To(Succeed())

			var count int64
			Expect(db.Model(&conversationDatamodel.Message{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
			Expect(db.Model(&conversationDatamodel.Conversation{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())

			published := publisher.Published()
			Expect(published).To(HaveLen(1))
			Expect(published[0].EventType()).To(Equal(events.EventTypeUserDeleted))

			_, err := service.Get(ctx, member.ID)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("returns not found for unknown users", func() {
			Expect(service.Delete(ctx, admin.ID, 999)).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("List", func() {
		It("includes each user's permissions", func() {
			_, err := service.Create(ctx, admin.ID, user.CreateUserDTO{
				Name: "Writer", Email: "writer@example.com", Password: "secret1", Role: "redacteur",
			})
			Expect(err).NotTo(HaveOccurred())

			users, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(3))
			byEmail := map[string]*user.User{}
			for _, u := range users {
				byEmail[u.Email] = u
			}
			Expect(byEmail["writer@example.com"].Permissions).To(HaveLen(2))
			Expect(byEmail["member@example.com"].Permissions).To(BeEmpty())
		})
	})
})
