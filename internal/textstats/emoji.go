package textstats

import (
	"unicode"

	"github.com/imsgstats/imsgstats/internal/model"
)

// emojiRanges covers emoticons, pictographs, transport symbols, regional indicators,
// dingbats, supplemental pictographs and misc symbols.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // symbols & pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport & map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental
	},
}

// IsEmoji reports whether r falls in one of the counted emoji ranges.
func IsEmoji(r rune) bool {
	return unicode.Is(emojiRanges, r)
}

// EmojiCounts counts every emoji code point of texts in first-seen order.
// Multi code point emoji such as flags count once per code point.
func EmojiCounts(texts []string) []model.EmojiCount {
	index := make(map[rune]int)
	counts := make([]model.EmojiCount, 0)
	for _, text := range texts {
		for _, r := range text {
			if !IsEmoji(r) {
				continue
			}
			if i, ok := index[r]; ok {
				counts[i].Count++
				continue
			}
			index[r] = len(counts)
			counts = append(counts, model.EmojiCount{Emoji: string(r), Count: 1})
		}
	}
	return counts
}

// MostCommonEmoji returns the most frequent emoji of texts, the first seen on ties,
// or nil when texts contain none.
func MostCommonEmoji(texts []string) *model.EmojiCount {
	var top *model.EmojiCount
	counts := EmojiCounts(texts)
	for i := range counts {
		if top == nil || counts[i].Count > top.Count {
			top = &counts[i]
		}
	}
	if top == nil {
		return nil
	}
	res := *top
	return &res
}
