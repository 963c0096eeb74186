package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
)

var _ = Describe("Permissions", func() {
	Describe("ParsePermission", func() {
		It("accepts canonical names in any case", func() {
			p, err := auth.ParsePermission(" can_manage_users ")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(auth.CanManageUsers))
		})

		It("rejects names outside the enum", func() {
			_, err := auth.ParsePermission("CAN_LAUNCH_ROCKETS")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidPermission))
		})
	})

	Describe("PermissionSet", func() {
		It("intersects when at least one permission is shared", func() {
			held := auth.NewPermissionSet(auth.CanManageArticles)
			Expect(held.Intersects(auth.NewPermissionSet(auth.CanManageUsers, auth.CanManageArticles))).To(BeTrue())
		})

		It("does not intersect disjoint sets", func() {
			held := auth.NewPermissionSet(auth.CanViewAdminDashboard)
			Expect(held.Intersects(auth.NewPermissionSet(auth.CanManagePrompts))).To(BeFalse())
		})

		It("does not intersect an empty set", func() {
			Expect(auth.NewPermissionSet().Intersects(auth.NewPermissionSet(auth.CanManageUsers))).To(BeFalse())
		})

		It("ignores unknown stored names", func() {
			set := auth.PermissionSetFromNames([]string{"CAN_MANAGE_USERS", "LEGACY_FLAG"})
			Expect(set.Names()).To(Equal([]string{"CAN_MANAGE_USERS"}))
		})
	})

	Describe("Role defaults", func() {
		It("grants every permission to admins", func() {
			Expect(auth.RoleAdmin.DefaultPermissions()).To(ConsistOf(auth.AllPermissions))
		})

		It("grants dashboard and articles to redacteurs", func() {
			Expect(auth.RoleRedacteur.DefaultPermissions()).To(ConsistOf(auth.CanViewAdminDashboard, auth.CanManageArticles))
		})

		It("grants nothing to plain users", func() {
			Expect(auth.RoleUser.DefaultPermissions()).To(BeEmpty())
		})

		It("rejects unknown roles and statuses", func() {
			_, err := auth.ParseRole("superuser")
			Expect(err).To(MatchError(internal.ErrInvalidRole))
			_, err = auth.ParseStatus("busy")
			Expect(err).To(MatchError(internal.ErrInvalidStatus))
		})
	})
})
