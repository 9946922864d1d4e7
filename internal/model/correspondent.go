package model

// CorrespondentBase aggregates per-person counters across the whole message set.
type CorrespondentBase struct {
	Name          string `json:"name"`
	MsgCount      int64  `json:"msg_count"`
	SentCount     int64  `json:"sent_count"`
	ReceivedCount int64  `json:"received_count"`
	MinCreateUnix int64  `json:"min_create_unix"`
	MaxCreateUnix int64  `json:"max_create_unix"`
	MessagingDays int64  `json:"messaging_days"`
}
