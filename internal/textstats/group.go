package textstats

import (
	"fmt"
	"strconv"

	"github.com/imsgstats/imsgstats/internal/model"
)

// KeyFunc maps a message to its flat grouping key.
type KeyFunc func(m *model.Message) string

// ByYear groups by "2006".
func ByYear(m *model.Message) string { return strconv.Itoa(m.Year()) }

// ByMonth groups by "2006-01".
func ByMonth(m *model.Message) string { return fmt.Sprintf("%04d-%02d", m.Year(), int(m.Month())) }

// GroupBy summarizes msgs per key in ascending key order.
func (c *WordCounter) GroupBy(msgs []*model.Message, key KeyFunc, wordLimit int) []model.GroupStats {
	groups := make(map[string][]string)
	for _, m := range msgs {
		k := key(m)
		groups[k] = append(groups[k], m.Text)
	}

	stats := make([]model.GroupStats, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		texts := groups[k]
		stats = append(stats, model.GroupStats{
			Key:         k,
			Count:       len(texts),
			CommonWords: c.MostCommon(texts, wordLimit),
			CommonEmoji: MostCommonEmoji(texts),
		})
	}
	return stats
}

// Reports holds both variants of the text count tree.
type Reports struct {
	Base          *model.GroupNode
	NoCommonWords *model.GroupNode
}

// BuildReports builds the base tree and the tree with common words removed.
// The two passes share the grouping and differ only in the stop word set.
func BuildReports(msgs []*model.Message, sw *StopWords, wordLimit int) (*Reports, error) {
	base, err := NewTreeBuilder(NewWordCounter(sw.For(false)), wordLimit).Build(msgs)
	if err != nil {
		return nil, err
	}
	extended, err := NewTreeBuilder(NewWordCounter(sw.For(true)), wordLimit).Build(msgs)
	if err != nil {
		return nil, err
	}
	return &Reports{Base: base, NoCommonWords: extended}, nil
}

// Summarize computes the flat statistics written to the text summary document.
func Summarize(msgs []*model.Message, counter *WordCounter, wordLimit, allWordLimit int) *model.TextSummary {
	summary := &model.TextSummary{
		Yearly:  counter.GroupBy(msgs, ByYear, wordLimit),
		Monthly: counter.GroupBy(msgs, ByMonth, wordLimit),
	}

	trend := make(map[string]*model.MonthlyTrend)
	people := make(map[string]*model.CorrespondentBase)
	days := make(map[string]map[string]struct{})
	sentTexts := make([]string, 0)

	for _, m := range msgs {
		unix := m.Time.Unix()
		g := &summary.Global
		g.Total++
		if g.EarliestUnix == 0 || unix < g.EarliestUnix {
			g.EarliestUnix = unix
		}
		if unix > g.LatestUnix {
			g.LatestUnix = unix
		}

		month := ByMonth(m)
		t, ok := trend[month]
		if !ok {
			t = &model.MonthlyTrend{Date: month}
			trend[month] = t
		}

		name := m.FirstName()
		p, ok := people[name]
		if !ok {
			p = &model.CorrespondentBase{Name: name, MinCreateUnix: unix, MaxCreateUnix: unix}
			people[name] = p
			days[name] = make(map[string]struct{})
		}
		p.MsgCount++
		if unix < p.MinCreateUnix {
			p.MinCreateUnix = unix
		}
		if unix > p.MaxCreateUnix {
			p.MaxCreateUnix = unix
		}
		days[name][m.Time.Format("2006-01-02")] = struct{}{}

		if m.Direction == model.Sent {
			g.Sent++
			t.Sent++
			p.SentCount++
			sentTexts = append(sentTexts, m.Text)
		} else {
			g.Received++
			t.Received++
			p.ReceivedCount++
		}
	}

	summary.Global.People = len(people)
	summary.MonthlyTrend = make([]model.MonthlyTrend, 0, len(trend))
	for _, k := range sortedKeys(trend) {
		summary.MonthlyTrend = append(summary.MonthlyTrend, *trend[k])
	}
	summary.People = make([]model.CorrespondentBase, 0, len(people))
	for _, k := range sortedKeys(people) {
		p := people[k]
		p.MessagingDays = int64(len(days[k]))
		summary.People = append(summary.People, *p)
	}
	summary.SentWords = counter.MostCommon(sentTexts, allWordLimit)
	summary.SentEmoji = MostCommonEmoji(sentTexts)
	return summary
}
