// Package testutil opens in-memory databases carrying the full schema for package tests.
package testutil

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	articleDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/article"
	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
	promptDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/prompttemplate"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

// OpenSQLite returns a private in-memory database. The pool is pinned to one
// connection because every new sqlite :memory: connection is a new, empty database.
func OpenSQLite() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&userDatamodel.Permission{},
		&userDatamodel.UserPermission{},
		&conversationDatamodel.Conversation{},
		&conversationDatamodel.Message{},
		&promptDatamodel.PromptTemplate{},
		&articleDatamodel.LegalArticle{},
		&articleDatamodel.ArticleCategory{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SeedUser inserts a user row directly, bypassing hashing.
func SeedUser(db *gorm.DB, name, email, role string) (*userDatamodel.User, error) {
	u := &userDatamodel.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       "offline",
		ProfileImage: "/pdp_none.png",
	}
	return u, db.Create(u).Error
}
