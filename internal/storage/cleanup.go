package storage

import (
	"context"
	"fmt"

	"github.com/Ilan9903/Juris-IA/internal/core/events"
)

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// RegisterCleanup removes stored files once the rows that referenced them are deleted.
func RegisterCleanup(bus Subscriber, media *Media) {
	bus.Subscribe(events.EventTypeUserDeleted, func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.UserDeletedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", e)
		}
		return media.Remove(ctx, ev.ProfileImage)
	})

	bus.Subscribe(events.EventTypeArticleDeleted, func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.ArticleDeletedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", e)
		}
		return media.Remove(ctx, ev.PDFURL)
	})
}
