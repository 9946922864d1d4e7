package model

// GlobalMessageStats summarizes a message set.
type GlobalMessageStats struct {
	Total        int64 `json:"total"`
	Sent         int64 `json:"sent"`
	Received     int64 `json:"received"`
	EarliestUnix int64 `json:"earliest_unix"`
	LatestUnix   int64 `json:"latest_unix"`
	People       int   `json:"people"`
}

// MonthlyTrend is the sent/received split for one month.
type MonthlyTrend struct {
	Date     string `json:"date"` // YYYY-MM
	Sent     int64  `json:"sent"`
	Received int64  `json:"received"`
}

// GroupStats is the word/emoji summary of one flat grouping key (a year, a year-month).
type GroupStats struct {
	Key         string      `json:"key"`
	Count       int         `json:"count"`
	CommonWords []WordCount `json:"common_words"`
	CommonEmoji *EmojiCount `json:"common_emoji"`
}

// TextSummary is the document written next to the tree reports.
type TextSummary struct {
	Global       GlobalMessageStats  `json:"global"`
	Yearly       []GroupStats        `json:"yearly"`
	Monthly      []GroupStats        `json:"monthly"`
	MonthlyTrend []MonthlyTrend      `json:"monthly_trend"`
	People       []CorrespondentBase `json:"people"`
	SentWords    []WordCount         `json:"sent_common_words"`
	SentEmoji    *EmojiCount         `json:"sent_common_emoji"`
}
