package csvfile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/pkg/util"
)

// DateLayout is the naive timestamp format of every table.
const DateLayout = "2006-01-02 15:04:05"

var (
	ContactHeader = []string{"name", "phone_number"}
	MessageHeader = []string{"text", "date", "message_id", "is_from_me", "is_emote", "is_audio_message", "phone_number"}
	CleanHeader   = append(append([]string{}, MessageHeader...), "name")
)

// DataSource serves the tables written by a previous extraction.
type DataSource struct {
	messagesPath string
	contactsPath string
}

func New(messagesPath, contactsPath string) *DataSource {
	return &DataSource{messagesPath: messagesPath, contactsPath: contactsPath}
}

func (ds *DataSource) GetMessages(ctx context.Context) ([]*model.RawMessage, error) {
	return ReadMessages(ds.messagesPath)
}

func (ds *DataSource) GetContacts(ctx context.Context) ([]*model.Contact, error) {
	return ReadContacts(ds.contactsPath)
}

func (ds *DataSource) Close() error { return nil }

func WriteContacts(path string, contacts []*model.Contact) error {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{c.Name, c.PhoneNumber})
	}
	if err := util.WriteCSVFileAtomic(path, ContactHeader, rows, false); err != nil {
		return errors.WriteFileFailed(path, err)
	}
	return nil
}

func ReadContacts(path string) ([]*model.Contact, error) {
	t, err := readTable(path, ContactHeader)
	if err != nil {
		return nil, err
	}
	contacts := make([]*model.Contact, 0, len(t.rows))
	for _, row := range t.rows {
		contacts = append(contacts, &model.Contact{
			Name:        t.get(row, "name"),
			PhoneNumber: t.get(row, "phone_number"),
		})
	}
	return contacts, nil
}

func WriteMessages(path string, msgs []*model.RawMessage) error {
	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, messageRow(m.Text, m.Time, m.ID, m.IsFromMe, m.IsEmote, m.IsAudioMessage, m.PhoneNumber))
	}
	if err := util.WriteCSVFileAtomic(path, MessageHeader, rows, true); err != nil {
		return errors.WriteFileFailed(path, err)
	}
	return nil
}

func ReadMessages(path string) ([]*model.RawMessage, error) {
	t, err := readTable(path, MessageHeader)
	if err != nil {
		return nil, err
	}
	msgs := make([]*model.RawMessage, 0, len(t.rows))
	for i, row := range t.rows {
		m, err := t.rawMessage(row, i)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// WriteClean writes the joined table; direction is stored as is_from_me.
func WriteClean(path string, msgs []*model.Message) error {
	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		row := messageRow(m.Text, m.Time, m.ID, m.Direction == model.Sent, m.IsEmote, m.IsAudio, m.PhoneNumber)
		rows = append(rows, append(row, m.Person))
	}
	if err := util.WriteCSVFileAtomic(path, CleanHeader, rows, true); err != nil {
		return errors.WriteFileFailed(path, err)
	}
	return nil
}

func ReadClean(path string) ([]*model.Message, error) {
	t, err := readTable(path, CleanHeader)
	if err != nil {
		return nil, err
	}
	msgs := make([]*model.Message, 0, len(t.rows))
	for i, row := range t.rows {
		raw, err := t.rawMessage(row, i)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, &model.Message{
			ID:          raw.ID,
			Text:        raw.Text,
			Time:        raw.Time,
			Person:      t.get(row, "name"),
			PhoneNumber: raw.PhoneNumber,
			Direction:   model.DirectionOf(raw.IsFromMe),
			IsEmote:     raw.IsEmote,
			IsAudio:     raw.IsAudioMessage,
		})
	}
	return msgs, nil
}

func messageRow(text string, ts time.Time, id int64, fromMe, emote, audio bool, phone string) []string {
	return []string{
		text,
		ts.Format(DateLayout),
		strconv.FormatInt(id, 10),
		strconv.FormatBool(fromMe),
		strconv.FormatBool(emote),
		strconv.FormatBool(audio),
		phone,
	}
}

type table struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// readTable loads path and checks that every required column is present.
// Extra columns are ignored; the first of duplicated columns wins.
func readTable(path string, required []string) (*table, error) {
	if !util.FileExists(path) {
		return nil, errors.ErrFileNotFound(path)
	}
	header, rows, err := util.ReadCSVFile(path)
	if err != nil {
		return nil, errors.ReadFileFailed(path, err)
	}
	t := &table{path: path, columns: make(map[string]int, len(header)), rows: rows}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := t.columns[h]; !ok {
			t.columns[h] = i
		}
	}
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			return nil, errors.ReadFileFailed(path, fmt.Errorf("missing column %q", col))
		}
	}
	return t, nil
}

func (t *table) get(row []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *table) rawMessage(row []string, index int) (*model.RawMessage, error) {
	ts, err := time.Parse(DateLayout, t.get(row, "date"))
	if err != nil {
		return nil, errors.InvalidRecord("message", index, "bad date "+strconv.Quote(t.get(row, "date")))
	}
	id, err := strconv.ParseInt(t.get(row, "message_id"), 10, 64)
	if err != nil {
		return nil, errors.InvalidRecord("message", index, "bad message_id")
	}
	return &model.RawMessage{
		ID:             id,
		Text:           t.get(row, "text"),
		Time:           ts,
		IsFromMe:       util.ParseBool(t.get(row, "is_from_me")),
		IsEmote:        util.ParseBool(t.get(row, "is_emote")),
		IsAudioMessage: util.ParseBool(t.get(row, "is_audio_message")),
		PhoneNumber:    t.get(row, "phone_number"),
	}, nil
}
