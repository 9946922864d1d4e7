package model

import (
	"encoding/json"
	"fmt"
)

// WordCount is one (word, count) pair; it serializes as a two-element JSON array.
type WordCount struct {
	Word  string
	Count int
}

func (w WordCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{w.Word, w.Count})
}

func (w *WordCount) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("word count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &w.Word); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &w.Count)
}

// EmojiCount is the most frequent emoji of a text set and its count.
type EmojiCount struct {
	Emoji string
	Count int
}

func (e EmojiCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Emoji, e.Count})
}

func (e *EmojiCount) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("emoji count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Emoji); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Count)
}

// GroupNode is one node of the lifetime > year > person > direction tree.
// A nil CommonWords or CommonEmoji on a leaf means nothing qualified.
type GroupNode struct {
	Name        string
	Value       int
	Children    []*GroupNode
	Leaf        bool
	CommonWords []WordCount
	CommonEmoji *EmojiCount
}

type innerNodeJSON struct {
	Name     string       `json:"name"`
	Children []*GroupNode `json:"children"`
	Value    int          `json:"value"`
}

type leafNodeJSON struct {
	Name        string      `json:"name"`
	Value       int         `json:"value"`
	CommonWords []WordCount `json:"common_words"`
	CommonEmoji *EmojiCount `json:"common_emoji"`
}

func (n *GroupNode) MarshalJSON() ([]byte, error) {
	if n.Leaf {
		return json.Marshal(leafNodeJSON{
			Name:        n.Name,
			Value:       n.Value,
			CommonWords: n.CommonWords,
			CommonEmoji: n.CommonEmoji,
		})
	}
	children := n.Children
	if children == nil {
		children = []*GroupNode{}
	}
	return json.Marshal(innerNodeJSON{Name: n.Name, Children: children, Value: n.Value})
}

func (n *GroupNode) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        string       `json:"name"`
		Value       int          `json:"value"`
		Children    []*GroupNode `json:"children"`
		CommonWords []WordCount  `json:"common_words"`
		CommonEmoji *EmojiCount  `json:"common_emoji"`
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	_, hasChildren := keys["children"]
	*n = GroupNode{
		Name:        raw.Name,
		Value:       raw.Value,
		Children:    raw.Children,
		Leaf:        !hasChildren,
		CommonWords: raw.CommonWords,
		CommonEmoji: raw.CommonEmoji,
	}
	return nil
}

// Validate checks bottom-up that every inner node's value is the sum of its children.
func (n *GroupNode) Validate() error {
	if n.Leaf {
		if len(n.Children) > 0 {
			return fmt.Errorf("leaf %q has children", n.Name)
		}
		return nil
	}
	sum := 0
	for _, c := range n.Children {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s/%w", n.Name, err)
		}
		sum += c.Value
	}
	if sum != n.Value {
		return fmt.Errorf("node %q: value %d != children sum %d", n.Name, n.Value, sum)
	}
	return nil
}

// Depth returns the number of levels below n down to its deepest leaf.
func (n *GroupNode) Depth() int {
	max := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > max {
			max = d
		}
	}
	return max
}

// Find returns the child with the given name, or nil.
func (n *GroupNode) Find(name string) *GroupNode {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
