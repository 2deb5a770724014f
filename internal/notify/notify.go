// Package notify announces newly stored comments.
package notify

import (
	"context"

	"xhs-monitor/internal/models"
)

// Notifier is told about the records a persist step actually inserted.
type Notifier interface {
	NotifyNewComments(ctx context.Context, snap models.PostSnapshot, records []models.FlatRecord) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) NotifyNewComments(context.Context, models.PostSnapshot, []models.FlatRecord) error {
	return nil
}
