package datasource

import (
	"context"

	"github.com/imsgstats/imsgstats/internal/model"
)

// DataSource yields the two raw tables the pipeline starts from.
type DataSource interface {
	// GetMessages returns every message with text, newest first.
	GetMessages(ctx context.Context) ([]*model.RawMessage, error)

	// GetContacts returns one entry per contact phone number.
	GetContacts(ctx context.Context) ([]*model.Contact, error)

	Close() error
}
