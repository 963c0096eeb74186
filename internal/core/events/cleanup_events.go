package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserDeleted    = "user.deleted"
	EventTypeArticleDeleted = "article.deleted"
)

// UserDeletedEvent is published once the user row is gone; ProfileImage is the
// last stored image URL.
type UserDeletedEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	ProfileImage string `json:"profile_image"`
}

func NewUserDeletedEvent(userID int64, profileImage string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":       userID,
				"profile_image": profileImage,
			},
		},
		UserID:       userID,
		ProfileImage: profileImage,
	}
}

type ArticleDeletedEvent struct {
	BaseEvent
	ArticleID int64  `json:"article_id"`
	PDFURL    string `json:"pdf_url"`
}

func NewArticleDeletedEvent(articleID int64, pdfURL string) *ArticleDeletedEvent {
	return &ArticleDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeArticleDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"article_id": articleID,
				"pdf_url":    pdfURL,
			},
		},
		ArticleID: articleID,
		PDFURL:    pdfURL,
	}
}
