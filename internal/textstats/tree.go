package textstats

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/model"
)

// RootName is the name of the tree root.
const RootName = "lifetime"

// TreeBuilder builds the lifetime > year > person > direction tree.
type TreeBuilder struct {
	words     *WordCounter
	wordLimit int
}

// NewTreeBuilder returns a builder whose leaves rank words with counter, capped at wordLimit.
func NewTreeBuilder(counter *WordCounter, wordLimit int) *TreeBuilder {
	if wordLimit <= 0 {
		wordLimit = DefaultWordLimit
	}
	return &TreeBuilder{words: counter, wordLimit: wordLimit}
}

// Build partitions msgs by year ascending, first name ascending and direction in
// declaration order, then summarizes every non-empty partition.
// A message that cannot be placed in the tree fails the whole build.
func (b *TreeBuilder) Build(msgs []*model.Message) (*model.GroupNode, error) {
	if err := CheckMessages(msgs); err != nil {
		return nil, err
	}

	years := make(map[int]map[string]map[model.Direction][]string)
	for _, m := range msgs {
		people, ok := years[m.Year()]
		if !ok {
			people = make(map[string]map[model.Direction][]string)
			years[m.Year()] = people
		}
		name := m.FirstName()
		dirs, ok := people[name]
		if !ok {
			dirs = make(map[model.Direction][]string)
			people[name] = dirs
		}
		dirs[m.Direction] = append(dirs[m.Direction], m.Text)
	}

	root := &model.GroupNode{Name: RootName, Children: make([]*model.GroupNode, 0, len(years))}
	for _, year := range sortedInts(years) {
		people := years[year]
		yearNode := &model.GroupNode{Name: strconv.Itoa(year), Children: make([]*model.GroupNode, 0, len(people))}
		for _, name := range sortedKeys(people) {
			dirs := people[name]
			personNode := &model.GroupNode{Name: name, Children: make([]*model.GroupNode, 0, len(dirs))}
			for _, dir := range []model.Direction{model.Sent, model.Received} {
				texts, ok := dirs[dir]
				if !ok {
					continue
				}
				leaf := b.leaf(dir.String(), texts)
				personNode.Children = append(personNode.Children, leaf)
				personNode.Value += leaf.Value
			}
			yearNode.Children = append(yearNode.Children, personNode)
			yearNode.Value += personNode.Value
		}
		root.Children = append(root.Children, yearNode)
		root.Value += yearNode.Value
	}

	if root.Value != len(msgs) {
		return nil, errors.Newf(nil, http.StatusInternalServerError, "tree holds %d messages, input has %d", root.Value, len(msgs))
	}
	if err := root.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tree", http.StatusInternalServerError)
	}

	log.Debug().Int("messages", root.Value).Int("years", len(root.Children)).Msg("text count tree built")
	return root, nil
}

func (b *TreeBuilder) leaf(name string, texts []string) *model.GroupNode {
	return &model.GroupNode{
		Name:        name,
		Value:       len(texts),
		Leaf:        true,
		CommonWords: b.words.MostCommon(texts, b.wordLimit),
		CommonEmoji: MostCommonEmoji(texts),
	}
}

// CheckMessages verifies every message can be grouped: it needs text, a correspondent
// whose first name is non-empty, a timestamp and a known direction.
func CheckMessages(msgs []*model.Message) error {
	for i, m := range msgs {
		switch {
		case m == nil:
			return errors.InvalidRecord("message", i, "nil message")
		case strings.TrimSpace(m.Text) == "":
			return errors.InvalidRecord("message", i, "empty text")
		case m.FirstName() == "":
			return errors.InvalidRecord("message", i, "empty person")
		case m.Time.IsZero():
			return errors.InvalidRecord("message", i, "missing timestamp")
		case !m.Direction.Valid():
			return errors.InvalidRecord("message", i, "unknown direction")
		}
	}
	return nil
}

func sortedInts[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
