package textstats

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"

	"github.com/imsgstats/imsgstats/internal/model"
)

const (
	// DefaultWordLimit is the cap for per-group word reports.
	DefaultWordLimit = 15
	// AllWordLimit is the cap for "everything" reports.
	AllWordLimit = 100
)

// contractionSplits are the colloquial fusions the Penn Treebank convention writes as two tokens.
var contractionSplits = map[string][2]string{
	"cannot": {"can", "not"},
	"gimme":  {"gim", "me"},
	"gonna":  {"gon", "na"},
	"gotta":  {"got", "ta"},
	"lemme":  {"lem", "me"},
	"wanna":  {"wan", "na"},
}

// WordCounter ranks content words across a set of texts.
// It is safe for concurrent use; the stop word set is never modified.
type WordCounter struct {
	tokenizer analysis.Tokenizer
	stop      analysis.TokenMap
}

// NewWordCounter returns a counter excluding the words in stop. A nil stop excludes nothing.
func NewWordCounter(stop analysis.TokenMap) *WordCounter {
	if stop == nil {
		stop = analysis.NewTokenMap()
	}
	// the whitespace constructor ignores its config and cache
	tokenizer, _ := whitespace.TokenizerConstructor(nil, nil)
	return &WordCounter{
		tokenizer: tokenizer,
		stop:      stop,
	}
}

// Tokenize joins texts with a space, lower-cases, splits contractions on the apostrophe,
// strips non-word runes, splits on whitespace and returns the word tokens before any
// filtering. Fused forms such as "gonna" come back as two tokens ("gon", "na"); runs
// of unspaced script like "你好世界" stay whole.
func (c *WordCounter) Tokenize(texts []string) []string {
	joined := strings.ReplaceAll(strings.ToLower(strings.Join(texts, " ")), "'", " ")
	cleaned := strings.Map(keepWordRune, joined)

	stream := c.tokenizer.Tokenize([]byte(cleaned))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		term := string(tok.Term)
		if parts, ok := contractionSplits[term]; ok {
			tokens = append(tokens, parts[0], parts[1])
			continue
		}
		tokens = append(tokens, term)
	}
	return tokens
}

// Words returns the tokens of texts that are neither stop words nor a single rune long.
func (c *WordCounter) Words(texts []string) []string {
	tokens := c.Tokenize(texts)
	words := tokens[:0]
	for _, tok := range tokens {
		if c.stop[tok] {
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(tok)) <= 1 {
			continue
		}
		words = append(words, tok)
	}
	return words
}

// MostCommon returns at most limit words of texts ordered by count, ties by first occurrence.
// It returns nil when no word survives the filter.
func (c *WordCounter) MostCommon(texts []string, limit int) []model.WordCount {
	words := c.Words(texts)
	if len(words) == 0 {
		return nil
	}
	return topN(countInOrder(words), limit)
}

func keepWordRune(r rune) rune {
	if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || unicode.IsSpace(r) {
		return r
	}
	return -1
}

// countInOrder counts items keeping the order in which each was first seen.
func countInOrder(items []string) []model.WordCount {
	index := make(map[string]int, len(items))
	counts := make([]model.WordCount, 0)
	for _, it := range items {
		if i, ok := index[it]; ok {
			counts[i].Count++
			continue
		}
		index[it] = len(counts)
		counts = append(counts, model.WordCount{Word: it, Count: 1})
	}
	return counts
}

func topN(counts []model.WordCount, limit int) []model.WordCount {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
