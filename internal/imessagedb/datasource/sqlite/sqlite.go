package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource/dbm"
	"github.com/imsgstats/imsgstats/internal/model"
)

const (
	messageQuery = `SELECT m.ROWID, m.text, m.date, m.is_from_me, m.is_emote, m.is_audio_message, h.id
FROM message m
LEFT JOIN handle h ON m.handle_id = h.ROWID
WHERE m.text IS NOT NULL AND m.text != ''
ORDER BY m.ROWID DESC`

	contactQuery = `SELECT p.ZFULLNUMBER, r.ZFIRSTNAME, r.ZLASTNAME
FROM ZABCDPHONENUMBER p
JOIN ZABCDRECORD r ON p.ZOWNER = r.Z_PK
WHERE p.ZFULLNUMBER IS NOT NULL
ORDER BY p.Z_PK`
)

// appleEpoch is the origin of chat.db timestamps.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// DataSource reads chat.db and every AddressBook database of the configured sources.
type DataSource struct {
	dbm *dbm.DBManager
	loc *time.Location

	chat     *sql.DB
	contacts []*sql.DB
}

// New opens the message group and every contact group database of d read-only.
// Timestamps are converted to loc and then stripped of their zone.
func New(d *dbm.DBManager, loc *time.Location) (*DataSource, error) {
	if loc == nil {
		loc = time.Local
	}
	ds := &DataSource{dbm: d, loc: loc}

	chatPaths, err := d.GetDBPath(dbm.Message)
	if err != nil {
		return nil, err
	}
	if ds.chat, err = openReadOnly(chatPaths[0]); err != nil {
		return nil, err
	}

	contactPaths, err := d.GetDBPath(dbm.Contact)
	if err != nil {
		ds.Close()
		return nil, err
	}
	for _, p := range contactPaths {
		db, err := openReadOnly(p)
		if err != nil {
			ds.Close()
			return nil, err
		}
		ds.contacts = append(ds.contacts, db)
	}

	log.Debug().Str("chat", chatPaths[0]).Int("address_books", len(contactPaths)).Msg("sqlite datasource opened")
	return ds, nil
}

func openReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errors.OpenDBFailed(path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.OpenDBFailed(path, err)
	}
	return db, nil
}

func (ds *DataSource) GetMessages(ctx context.Context) ([]*model.RawMessage, error) {
	rows, err := ds.chat.QueryContext(ctx, messageQuery)
	if err != nil {
		return nil, errors.QueryFailed("message", err)
	}
	defer rows.Close()

	msgs := make([]*model.RawMessage, 0)
	for rows.Next() {
		var (
			m                    model.RawMessage
			date                 int64
			fromMe, emote, audio sql.NullInt64
			handle               sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Text, &date, &fromMe, &emote, &audio, &handle); err != nil {
			return nil, errors.QueryFailed("message", err)
		}
		m.Time = ds.convertDate(date)
		m.IsFromMe = fromMe.Int64 != 0
		m.IsEmote = emote.Int64 != 0
		m.IsAudioMessage = audio.Int64 != 0
		m.PhoneNumber = handle.String
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.QueryFailed("message", err)
	}
	return msgs, nil
}

func (ds *DataSource) GetContacts(ctx context.Context) ([]*model.Contact, error) {
	contacts := make([]*model.Contact, 0)
	for _, db := range ds.contacts {
		rows, err := db.QueryContext(ctx, contactQuery)
		if err != nil {
			return nil, errors.QueryFailed("contact", err)
		}
		for rows.Next() {
			var number string
			var first, last sql.NullString
			if err := rows.Scan(&number, &first, &last); err != nil {
				rows.Close()
				return nil, errors.QueryFailed("contact", err)
			}
			contacts = append(contacts, &model.Contact{
				Name:        strings.TrimSpace(first.String + " " + last.String),
				PhoneNumber: NormalizePhoneNumber(number),
			})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, errors.QueryFailed("contact", err)
		}
	}
	return contacts, nil
}

// convertDate turns a chat.db date into naive local time, rounded to the second.
// Since macOS 10.13 dates are nanoseconds; older rows hold seconds.
func (ds *DataSource) convertDate(v int64) time.Time {
	var d time.Duration
	if v > 1e11 || v < -1e11 {
		d = time.Duration(v)
	} else {
		d = time.Duration(v) * time.Second
	}
	t := appleEpoch.Add(d).Round(time.Second).In(ds.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func (ds *DataSource) Close() error {
	var first error
	if ds.chat != nil {
		if err := ds.chat.Close(); err != nil {
			first = err
		}
	}
	for _, db := range ds.contacts {
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
