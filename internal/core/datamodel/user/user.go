package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:user"`
	Status       string    `gorm:"column:status;not null;default:offline"`
	ProfileImage string    `gorm:"column:profile_image;not null;default:/pdp_none.png"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}

type UserPermission struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_permission"`
	PermissionID int64     `gorm:"column:permission_id;not null;uniqueIndex:idx_user_permission"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
