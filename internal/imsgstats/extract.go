package imsgstats

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource"
	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource/csvfile"
	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource/dbm"
	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource/sqlite"
	"github.com/imsgstats/imsgstats/internal/imessagedb/repository"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/pkg/util"
)

type ExtractResult struct {
	Messages    int
	Contacts    int
	Fingerprint string
	// Reused is set when the source databases were unchanged since the last extraction.
	Reused bool
}

func (s *Service) sourceDBM() *dbm.DBManager {
	d := dbm.NewDBManager("")
	d.AddGroup(dbm.Message, s.conf.GetChatDB())
	d.AddGroup(dbm.Contact, s.conf.GetAddressBookDB()...)
	return d
}

// Extract copies messages and contacts out of the source databases.
// Unless force is set it does nothing when the sources did not change.
func (s *Service) Extract(ctx context.Context, force bool) (*ExtractResult, error) {
	d := s.sourceDBM()
	fp, err := d.FingerprintForGroups(dbm.Message, dbm.Contact)
	if err != nil {
		return nil, err
	}

	msgPath, contactPath := s.path(MessagesFile), s.path(ContactsFile)
	if !force && fp != "" && fp == s.readFingerprint() && util.FileExists(msgPath) && util.FileExists(contactPath) {
		log.Info().Str("fingerprint", fp).Msg("sources unchanged, extraction skipped")
		return &ExtractResult{Fingerprint: fp, Reused: true}, nil
	}

	ds, err := sqlite.New(d, s.conf.GetLocation())
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	started := time.Now()
	msgs, contacts, err := load(ctx, ds)
	if err != nil {
		return nil, err
	}
	if err := csvfile.WriteMessages(msgPath, msgs); err != nil {
		return nil, err
	}
	if err := csvfile.WriteContacts(contactPath, contacts); err != nil {
		return nil, err
	}
	if err := util.WriteFileAtomic(s.path(sourceFingerprintFile), []byte(fp+"\n"), 0o644); err != nil {
		return nil, errors.WriteFileFailed(s.path(sourceFingerprintFile), err)
	}

	log.Info().
		Int("messages", len(msgs)).
		Int("contacts", len(contacts)).
		Dur("took", time.Since(started)).
		Msg("extracted")
	return &ExtractResult{Messages: len(msgs), Contacts: len(contacts), Fingerprint: fp}, nil
}

func load(ctx context.Context, ds datasource.DataSource) ([]*model.RawMessage, []*model.Contact, error) {
	msgs, err := ds.GetMessages(ctx)
	if err != nil {
		return nil, nil, err
	}
	contacts, err := ds.GetContacts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return msgs, contacts, nil
}

func (s *Service) readFingerprint() string {
	b, err := os.ReadFile(s.path(sourceFingerprintFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// tableDS serves the extracted tables.
func (s *Service) tableDS() *csvfile.DataSource {
	return csvfile.New(s.path(MessagesFile), s.path(ContactsFile))
}

// Clean joins the extracted messages with their contacts and writes the clean table.
func (s *Service) Clean(ctx context.Context) ([]*model.Message, error) {
	ds := s.tableDS()
	defer ds.Close()

	msgs, err := repository.New(ds, nil).Messages(ctx)
	if err != nil {
		return nil, err
	}
	if err := csvfile.WriteClean(s.path(CleanFile), msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) cleanMessages() ([]*model.Message, error) {
	return csvfile.ReadClean(s.path(CleanFile))
}
