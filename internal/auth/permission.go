package auth

import (
	"sort"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
)

type Permission string

const (
	CanViewAdminDashboard Permission = "CAN_VIEW_ADMIN_DASHBOARD"
	CanManageUsers        Permission = "CAN_MANAGE_USERS"
	CanManagePrompts      Permission = "CAN_MANAGE_PROMPTS"
	CanManageArticles     Permission = "CAN_MANAGE_ARTICLES"
)

var AllPermissions = []Permission{
	CanViewAdminDashboard,
	CanManageUsers,
	CanManagePrompts,
	CanManageArticles,
}

var permissionDescriptions = map[Permission]string{
	CanViewAdminDashboard: "Access the administration dashboard",
	CanManageUsers:        "Create, update and delete user accounts",
	CanManagePrompts:      "Curate the assistant prompt templates",
	CanManageArticles:     "Publish and edit legal articles",
}

func (p Permission) Description() string {
	return permissionDescriptions[p]
}

// ParsePermission accepts a canonical name in any case and rejects anything outside the enum.
func ParsePermission(name string) (Permission, error) {
	p := Permission(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := permissionDescriptions[p]; !ok {
		return "", internal.NewValidationError("Unknown permission: "+name, internal.ErrCodeInvalidPermission)
	}
	return p, nil
}

type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// PermissionSetFromNames builds a set from stored names, skipping rows that are not part of the enum.
func PermissionSetFromNames(names []string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, n := range names {
		if p, err := ParsePermission(n); err == nil {
			set[p] = struct{}{}
		}
	}
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Intersects reports whether at least one of required is in the set.
func (s PermissionSet) Intersects(required PermissionSet) bool {
	for p := range required {
		if s.Has(p) {
			return true
		}
	}
	return false
}

func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

type Role string

const (
	RoleUser      Role = "user"
	RoleRedacteur Role = "redacteur"
	RoleAdmin     Role = "admin"
)

func ParseRole(name string) (Role, error) {
	switch r := Role(strings.TrimSpace(name)); r {
	case RoleUser, RoleRedacteur, RoleAdmin:
		return r, nil
	}
	return "", internal.ErrInvalidRole
}

// DefaultPermissions is what a role is granted on creation or role change.
func (r Role) DefaultPermissions() []Permission {
	switch r {
	case RoleAdmin:
		return append([]Permission(nil), AllPermissions...)
	case RoleRedacteur:
		return []Permission{CanViewAdminDashboard, CanManageArticles}
	}
	return nil
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusIdle    Status = "idle"
	StatusOffline Status = "offline"
)

func ParseStatus(name string) (Status, error) {
	switch s := Status(strings.TrimSpace(name)); s {
	case StatusOnline, StatusIdle, StatusOffline:
		return s, nil
	}
	return "", internal.ErrInvalidStatus
}

const DefaultProfileImage = "/pdp_none.png"
