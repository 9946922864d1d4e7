package textstats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/model"
)

func mustStopWords(t *testing.T) *StopWords {
	t.Helper()
	sw, err := NewStopWords(nil, nil)
	require.NoError(t, err)
	return sw
}

func msg(text, person string, dir model.Direction, ts string) *model.Message {
	tm, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		panic(err)
	}
	return &model.Message{Text: text, Person: person, Direction: dir, Time: tm}
}

func TestStopWords(t *testing.T) {
	sw := mustStopWords(t)

	for _, w := range []string{"the", "don", "really", "loved", "emphasized", "im", "ur"} {
		assert.True(t, sw.Base[w], w)
		assert.True(t, sw.Extended[w], w)
	}
	for _, w := range []string{"lol", "okay", "hello", "said"} {
		assert.False(t, sw.Base[w], w)
		assert.True(t, sw.Extended[w], w)
	}
	assert.False(t, sw.Extended["friend"])
	assert.Equal(t, sw.Base, sw.For(false))
	assert.Equal(t, sw.Extended, sw.For(true))
}

func TestStopWordsExtra(t *testing.T) {
	sw, err := NewStopWords([]string{" Pizza "}, []string{"brb"})
	require.NoError(t, err)

	assert.True(t, sw.Base["pizza"])
	assert.True(t, sw.Extended["pizza"])
	assert.True(t, sw.Extended["brb"])
	assert.False(t, sw.Extended["lol"])
}

func TestTokenizeSplitsContractions(t *testing.T) {
	c := NewWordCounter(nil)

	assert.Equal(t, []string{"don", "t", "stop"}, c.Tokenize([]string{"don't stop"}))
	assert.Equal(t, []string{"don", "stop"}, c.Words([]string{"don't stop"}))
}

func TestTokenizeSplitsFusedForms(t *testing.T) {
	c := NewWordCounter(nil)

	assert.Equal(t, []string{"gon", "na", "wan", "na"}, c.Tokenize([]string{"gonna wanna"}))
	assert.Equal(t, []string{"i", "can", "not", "got", "ta", "go"}, c.Tokenize([]string{"I cannot", "GOTTA go!"}))
	assert.Equal(t, []string{"lem", "me", "gim", "me", "gonnagonna"}, c.Tokenize([]string{"lemme gimme gonnagonna"}))
}

func TestMostCommonFusedFormsByMode(t *testing.T) {
	sw := mustStopWords(t)
	texts := []string{"gonna wanna"}

	base := NewWordCounter(sw.Base).MostCommon(texts, DefaultWordLimit)
	assert.Equal(t, []model.WordCount{{Word: "gon", Count: 1}, {Word: "wan", Count: 1}}, base)

	assert.Nil(t, NewWordCounter(sw.Extended).MostCommon(texts, DefaultWordLimit))

	mixed := []string{"gonna wanna gonna", "i cannot lol", "gotta go"}
	assert.Equal(t, []model.WordCount{{Word: "ta", Count: 1}}, NewWordCounter(sw.Extended).MostCommon(mixed, DefaultWordLimit))
}

func TestMostCommonKeepsUnspacedScriptRuns(t *testing.T) {
	c := NewWordCounter(mustStopWords(t).Base)

	assert.Equal(t, []string{"你好世界", "你好世界"}, c.Tokenize([]string{"你好世界 你好世界"}))
	assert.Equal(t, []model.WordCount{{Word: "你好世界", Count: 2}}, c.MostCommon([]string{"你好世界 你好世界"}, DefaultWordLimit))
}

func TestMostCommonCaseAndPunctuation(t *testing.T) {
	c := NewWordCounter(mustStopWords(t).Base)

	a := c.MostCommon([]string{"Hello!! hello."}, DefaultWordLimit)
	b := c.MostCommon([]string{"hello hello"}, DefaultWordLimit)

	require.Len(t, a, 1)
	assert.Equal(t, model.WordCount{Word: "hello", Count: 2}, a[0])
	assert.Equal(t, a, b)
}

func TestMostCommonAbsent(t *testing.T) {
	c := NewWordCounter(mustStopWords(t).Base)

	assert.Nil(t, c.MostCommon([]string{"Loved “the and it was”", "I am so", "u ur"}, DefaultWordLimit))
	assert.Nil(t, c.MostCommon(nil, DefaultWordLimit))
	assert.Nil(t, c.MostCommon([]string{"a b c !!!"}, DefaultWordLimit))
}

func TestMostCommonOrderAndLimit(t *testing.T) {
	c := NewWordCounter(nil)

	got := c.MostCommon([]string{"zebra apple", "mango apple zebra", "kiwi"}, 3)
	assert.Equal(t, []model.WordCount{
		{Word: "zebra", Count: 2},
		{Word: "apple", Count: 2},
		{Word: "mango", Count: 1},
	}, got)

	all := c.MostCommon([]string{"zebra apple", "mango apple zebra", "kiwi"}, 0)
	assert.Len(t, all, 4)
}

func TestMostCommonKeepsUnderscoreAndDigits(t *testing.T) {
	c := NewWordCounter(nil)

	got := c.MostCommon([]string{"snake_case 2024 #tag"}, DefaultWordLimit)
	assert.Equal(t, []model.WordCount{
		{Word: "snake_case", Count: 1},
		{Word: "2024", Count: 1},
		{Word: "tag", Count: 1},
	}, got)
}

func TestEmojiCountsPerCodePoint(t *testing.T) {
	counts := EmojiCounts([]string{"go 🇺🇸🇺🇸", "😂"})
	assert.Equal(t, []model.EmojiCount{
		{Emoji: "\U0001F1FA", Count: 2},
		{Emoji: "\U0001F1F8", Count: 2},
		{Emoji: "😂", Count: 1},
	}, counts)

	top := MostCommonEmoji([]string{"go 🇺🇸🇺🇸", "😂"})
	require.NotNil(t, top)
	assert.Equal(t, model.EmojiCount{Emoji: "\U0001F1FA", Count: 2}, *top)
}

func TestMostCommonEmoji(t *testing.T) {
	top := MostCommonEmoji([]string{"☀ nice ✨", "😂😂 lol ✨", "✨"})
	require.NotNil(t, top)
	assert.Equal(t, model.EmojiCount{Emoji: "✨", Count: 3}, *top)

	assert.Nil(t, MostCommonEmoji([]string{"no emoji here :)"}))
	assert.True(t, IsEmoji('🚀'))
	assert.False(t, IsEmoji('a'))
}

func TestTreeBuilderEndToEnd(t *testing.T) {
	msgs := []*model.Message{
		msg("hello there friend", "Alex Smith", model.Sent, "2023-03-01 10:00:00"),
		msg("friend friend party", "Alex Smith", model.Sent, "2023-03-02 10:00:00"),
		msg("party time", "Alex Smith", model.Received, "2023-03-03 10:00:00"),
	}

	root, err := NewTreeBuilder(NewWordCounter(mustStopWords(t).Base), DefaultWordLimit).Build(msgs)
	require.NoError(t, err)
	require.NoError(t, root.Validate())

	assert.Equal(t, RootName, root.Name)
	assert.Equal(t, 3, root.Value)
	assert.Equal(t, 3, root.Depth())

	year := root.Find("2023")
	require.NotNil(t, year)
	assert.Equal(t, 3, year.Value)

	alex := year.Find("Alex")
	require.NotNil(t, alex)
	assert.Equal(t, 3, alex.Value)
	require.Len(t, alex.Children, 2)

	sent, received := alex.Children[0], alex.Children[1]
	assert.Equal(t, "Sent", sent.Name)
	assert.Equal(t, 2, sent.Value)
	require.NotEmpty(t, sent.CommonWords)
	assert.Equal(t, model.WordCount{Word: "friend", Count: 3}, sent.CommonWords[0])

	assert.Equal(t, "Received", received.Name)
	assert.Equal(t, 1, received.Value)
	assert.Equal(t, []model.WordCount{{Word: "party", Count: 1}, {Word: "time", Count: 1}}, received.CommonWords)
	assert.Nil(t, received.CommonEmoji)
}

func TestTreeBuilderOrderAndConservation(t *testing.T) {
	msgs := []*model.Message{
		msg("see you soon 😂", "Zoe Park", model.Received, "2024-01-01 09:00:00"),
		msg("pizza tonight", "Mary-Jane Doe", model.Sent, "2022-06-01 09:00:00"),
		msg("pizza again", "Mary Lee", model.Received, "2022-06-02 09:00:00"),
		msg("running late", "Zoe Park", model.Sent, "2024-01-02 09:00:00"),
		msg("sounds fun", "Bob", model.Received, "2024-02-01 09:00:00"),
	}

	root, err := NewTreeBuilder(NewWordCounter(mustStopWords(t).Base), 10).Build(msgs)
	require.NoError(t, err)
	require.NoError(t, root.Validate())
	assert.Equal(t, len(msgs), root.Value)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "2022", root.Children[0].Name)
	assert.Equal(t, "2024", root.Children[1].Name)

	// Mary-Jane Doe and Mary Lee share the grouping name.
	mary := root.Children[0].Find("Mary")
	require.NotNil(t, mary)
	assert.Equal(t, 2, mary.Value)
	assert.Equal(t, []string{"Sent", "Received"}, []string{mary.Children[0].Name, mary.Children[1].Name})
	assert.Equal(t, model.WordCount{Word: "pizza", Count: 1}, mary.Children[0].CommonWords[0])

	y2024 := root.Children[1]
	require.Len(t, y2024.Children, 2)
	assert.Equal(t, "Bob", y2024.Children[0].Name)
	assert.Equal(t, "Zoe", y2024.Children[1].Name)

	zoe := y2024.Children[1]
	assert.Equal(t, "Sent", zoe.Children[0].Name)
	received := zoe.Children[1]
	require.NotNil(t, received.CommonEmoji)
	assert.Equal(t, "😂", received.CommonEmoji.Emoji)

	b, err := json.Marshal(root)
	require.NoError(t, err)
	var back model.GroupNode
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, root.Value, back.Value)
	require.NoError(t, back.Validate())
}

func TestTreeBuilderRejectsInvalidRecords(t *testing.T) {
	good := msg("hey", "Alex", model.Sent, "2023-01-01 00:00:00")
	cases := map[string]*model.Message{
		"empty text":        {Text: "  ", Person: "Alex", Time: good.Time, Direction: model.Sent},
		"empty person":      {Text: "hey", Person: " ", Time: good.Time, Direction: model.Sent},
		"missing timestamp": {Text: "hey", Person: "Alex", Direction: model.Sent},
		"unknown direction": {Text: "hey", Person: "Alex", Time: good.Time, Direction: model.Direction(9)},
	}
	builder := NewTreeBuilder(NewWordCounter(nil), DefaultWordLimit)
	for reason, bad := range cases {
		_, err := builder.Build([]*model.Message{good, bad})
		require.Error(t, err, reason)
		assert.Contains(t, err.Error(), reason)

		var e *errors.Error
		assert.True(t, errors.As(err, &e), reason)
	}
}

func TestTreeBuilderEmpty(t *testing.T) {
	root, err := NewTreeBuilder(NewWordCounter(nil), DefaultWordLimit).Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Value)
	assert.Empty(t, root.Children)
}

func TestBuildReportsTwoModes(t *testing.T) {
	msgs := []*model.Message{msg("like lol ok", "Sam", model.Sent, "2021-05-05 12:00:00")}

	reports, err := BuildReports(msgs, mustStopWords(t), DefaultWordLimit)
	require.NoError(t, err)

	base := reports.Base.Find("2021").Find("Sam").Find("Sent")
	require.NotNil(t, base)
	assert.Equal(t, []model.WordCount{{Word: "like", Count: 1}, {Word: "lol", Count: 1}, {Word: "ok", Count: 1}}, base.CommonWords)

	extended := reports.NoCommonWords.Find("2021").Find("Sam").Find("Sent")
	require.NotNil(t, extended)
	assert.Nil(t, extended.CommonWords)
	assert.Equal(t, 1, extended.Value)

	b, err := json.Marshal(extended)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"common_words":null`)
}

func TestGroupByAndSummarize(t *testing.T) {
	msgs := []*model.Message{
		msg("coffee tomorrow", "Alex Smith", model.Sent, "2023-01-05 08:00:00"),
		msg("coffee sounds great ☕", "Alex Smith", model.Received, "2023-01-05 08:05:00"),
		msg("happy new year 🎉", "Bea Cruz", model.Sent, "2024-01-01 00:00:10"),
	}
	counter := NewWordCounter(mustStopWords(t).Base)

	yearly := counter.GroupBy(msgs, ByYear, DefaultWordLimit)
	require.Len(t, yearly, 2)
	assert.Equal(t, "2023", yearly[0].Key)
	assert.Equal(t, 2, yearly[0].Count)
	assert.Equal(t, model.WordCount{Word: "coffee", Count: 2}, yearly[0].CommonWords[0])
	assert.Equal(t, "2024", yearly[1].Key)

	monthly := counter.GroupBy(msgs, ByMonth, DefaultWordLimit)
	assert.Equal(t, "2023-01", monthly[0].Key)
	assert.Equal(t, "2024-01", monthly[1].Key)

	summary := Summarize(msgs, counter, DefaultWordLimit, AllWordLimit)
	assert.Equal(t, int64(3), summary.Global.Total)
	assert.Equal(t, int64(2), summary.Global.Sent)
	assert.Equal(t, int64(1), summary.Global.Received)
	assert.Equal(t, 2, summary.Global.People)
	assert.Equal(t, msgs[0].Time.Unix(), summary.Global.EarliestUnix)
	assert.Equal(t, msgs[2].Time.Unix(), summary.Global.LatestUnix)

	require.Len(t, summary.MonthlyTrend, 2)
	assert.Equal(t, model.MonthlyTrend{Date: "2023-01", Sent: 1, Received: 1}, summary.MonthlyTrend[0])

	require.Len(t, summary.People, 2)
	assert.Equal(t, "Alex", summary.People[0].Name)
	assert.Equal(t, int64(2), summary.People[0].MsgCount)
	assert.Equal(t, int64(1), summary.People[0].MessagingDays)

	require.NotEmpty(t, summary.SentWords)
	assert.Equal(t, "coffee", summary.SentWords[0].Word)
	require.NotNil(t, summary.SentEmoji)
	assert.Equal(t, "🎉", summary.SentEmoji.Emoji)
}
