package services

import (
	"context"
	"log"

	"pondy/classifieds/internal/models"
)

// IDispatcher emits outbound notification events after a core mutation
// commits. Implementations must be safe to call concurrently; callers treat
// dispatch as best-effort and never fail the triggering request on error.
type IDispatcher interface {
	Dispatch(ctx context.Context, event models.NotificationEvent) error
}

// NopDispatcher discards events. Used when no queue is configured and in tests.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(ctx context.Context, event models.NotificationEvent) error {
	return nil
}

// dispatchBestEffort logs and swallows dispatch failures.
func dispatchBestEffort(ctx context.Context, d IDispatcher, event models.NotificationEvent) {
	if d == nil {
		return
	}
	if err := d.Dispatch(ctx, event); err != nil {
		log.Printf("Failed to dispatch notification %s for listing %d: %v", event.NotificationID, event.PpcID, err)
	}
}
