package repository

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource"
	"github.com/imsgstats/imsgstats/internal/imessagedb/indexer"
	"github.com/imsgstats/imsgstats/internal/model"
)

// Repository resolves raw messages to their correspondents.
type Repository struct {
	ds  datasource.DataSource
	idx *indexer.Index
}

// New returns a repository over ds. idx may be nil when search is not used.
func New(ds datasource.DataSource, idx *indexer.Index) *Repository {
	return &Repository{ds: ds, idx: idx}
}

// Messages loads both tables from the data source and joins them.
func (r *Repository) Messages(ctx context.Context) ([]*model.Message, error) {
	raw, err := r.ds.GetMessages(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := r.ds.GetContacts(ctx)
	if err != nil {
		return nil, err
	}
	return Join(raw, contacts), nil
}

// JoinStats counts what Join dropped.
type JoinStats struct {
	NoText    int
	NoContact int
	Duplicate int
	// NoName counts contacts whose name has no usable first name, e.g. "-Jo Lee".
	NoName int
}

// Join keeps the messages whose phone number belongs to a named contact.
// When several contacts share a number the first one wins.
func Join(raw []*model.RawMessage, contacts []*model.Contact) []*model.Message {
	msgs, stats := JoinWithStats(raw, contacts)
	log.Info().
		Int("messages", len(raw)).
		Int("contacts", len(contacts)).
		Int("joined", len(msgs)).
		Int("no_text", stats.NoText).
		Int("no_contact", stats.NoContact).
		Int("duplicate_numbers", stats.Duplicate).
		Int("no_first_name", stats.NoName).
		Msg("messages joined with contacts")
	return msgs
}

func JoinWithStats(raw []*model.RawMessage, contacts []*model.Contact) ([]*model.Message, JoinStats) {
	var stats JoinStats

	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		if c == nil || c.PhoneNumber == "" || strings.TrimSpace(c.Name) == "" {
			continue
		}
		if model.FirstName(c.Name) == "" {
			stats.NoName++
			log.Debug().Str("phone_number", c.PhoneNumber).Str("name", c.Name).Msg("contact has no first name")
			continue
		}
		if prev, ok := names[c.PhoneNumber]; ok {
			stats.Duplicate++
			if prev != c.Name {
				log.Debug().Str("phone_number", c.PhoneNumber).Str("kept", prev).Str("dropped", c.Name).Msg("duplicate contact number")
			}
			continue
		}
		names[c.PhoneNumber] = c.Name
	}

	msgs := make([]*model.Message, 0, len(raw))
	for _, m := range raw {
		if strings.TrimSpace(m.Text) == "" {
			stats.NoText++
			continue
		}
		name, ok := names[m.PhoneNumber]
		if !ok {
			stats.NoContact++
			continue
		}
		msgs = append(msgs, &model.Message{
			ID:          m.ID,
			Text:        m.Text,
			Time:        m.Time,
			Person:      name,
			PhoneNumber: m.PhoneNumber,
			Direction:   model.DirectionOf(m.IsFromMe),
			IsEmote:     m.IsEmote,
			IsAudio:     m.IsAudioMessage,
		})
	}
	return msgs, stats
}
