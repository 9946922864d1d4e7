package textstats

import (
	"bufio"
	"bytes"
	"embed"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
)

//go:embed stopwords/*.txt
var stopWordFS embed.FS

// ReactionWords are injected into message bodies by tapbacks ("Loved “...”").
var ReactionWords = []string{"loved", "liked", "disliked", "laughed", "emphasized", "questioned", "reacted"}

// NoiseWords are short tokens that survive the standard lists but carry nothing.
var NoiseWords = []string{"im", "u", "ill", "na", "ur"}

// CommonWords are the colloquialisms removed in the "no common words" report.
var CommonWords = []string{
	"like", "lol", "lmao", "okay", "oh", "ok", "okie", "yes", "yeah", "yea", "good", "bc", "omg",
	"hi", "haha", "hello", "uh", "ah", "id", "ive", "thats", "gon", "wan", "got", "tho", "said",
}

// StopWords is the word filter configuration handed to a WordCounter.
// Extended is always a superset of Base.
type StopWords struct {
	Base     analysis.TokenMap
	Extended analysis.TokenMap
}

// For returns the set to use for the given report mode.
func (s *StopWords) For(removeCommon bool) analysis.TokenMap {
	if removeCommon {
		return s.Extended
	}
	return s.Base
}

// NewStopWords builds the base set from the embedded NLTK and spaCy lists, the reaction
// verbs, the noise tokens and extra; the extended set adds common. A nil common uses CommonWords.
func NewStopWords(extra []string, common []string) (*StopWords, error) {
	base := analysis.NewTokenMap()
	for _, name := range []string{"stopwords/nltk_en.txt", "stopwords/spacy_en.txt"} {
		b, err := stopWordFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := loadWordList(base, b); err != nil {
			return nil, err
		}
	}
	addWords(base, ReactionWords)
	addWords(base, NoiseWords)
	addWords(base, extra)

	if common == nil {
		common = CommonWords
	}
	extended := analysis.NewTokenMap()
	for w := range base {
		extended.AddToken(w)
	}
	addWords(extended, common)

	return &StopWords{Base: base, Extended: extended}, nil
}

// loadWordList reads whitespace separated words, ignoring lines starting with '#'.
func loadWordList(m analysis.TokenMap, b []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addWords(m, strings.Fields(line))
	}
	return scanner.Err()
}

func addWords(m analysis.TokenMap, words []string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		m.AddToken(w)
	}
}
