package model

import (
	"fmt"
	"strings"
	"time"
)

// Direction tells whether a message was sent by the account owner or received.
// The declaration order is the order used when partitioning.
type Direction int

const (
	Sent Direction = iota
	Received
)

func (d Direction) String() string {
	switch d {
	case Sent:
		return "Sent"
	case Received:
		return "Received"
	default:
		return "Unknown"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "sent":
		*d = Sent
	case "received":
		*d = Received
	default:
		return fmt.Errorf("unknown direction %q", string(b))
	}
	return nil
}

// Valid reports whether d is one of the declared directions.
func (d Direction) Valid() bool {
	return d == Sent || d == Received
}

// DirectionOf maps the Messages is_from_me flag to a Direction.
func DirectionOf(isFromMe bool) Direction {
	if isFromMe {
		return Sent
	}
	return Received
}

// RawMessage is one row extracted from chat.db before the contacts join.
// Time is naive local time in the configured zone.
type RawMessage struct {
	ID             int64     `json:"message_id"`
	Text           string    `json:"text"`
	Time           time.Time `json:"date"`
	IsFromMe       bool      `json:"is_from_me"`
	IsEmote        bool      `json:"is_emote"`
	IsAudioMessage bool      `json:"is_audio_message"`
	PhoneNumber    string    `json:"phone_number"`
}

// Contact is one AddressBook phone entry.
type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Message is a text message resolved to its correspondent.
type Message struct {
	ID          int64     `json:"message_id"`
	Text        string    `json:"text"`
	Time        time.Time `json:"date"`
	Person      string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Direction   Direction `json:"direction"`
	IsEmote     bool      `json:"is_emote,omitempty"`
	IsAudio     bool      `json:"is_audio_message,omitempty"`
}

func (m *Message) Year() int { return m.Time.Year() }

func (m *Message) Month() time.Month { return m.Time.Month() }

// FirstName returns the first whitespace-delimited token of name, cut at the first hyphen.
func (m *Message) FirstName() string {
	return FirstName(m.Person)
}

// FirstName derives the grouping name from a display name: "Mary-Jane Doe" -> "Mary".
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	first, _, _ := strings.Cut(fields[0], "-")
	return first
}
