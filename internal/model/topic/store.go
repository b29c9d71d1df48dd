package topic

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrMissingCategory   = errors.New("missing category")
	ErrEmptyCategory     = errors.New("category has no topics")
	ErrBlankTopic        = errors.New("blank topic")
)

// Store exposes read-only corpus access for services and HTTP handlers.
type Store interface {
	Categories() []Category
	Topics(c Category) []string
	Groups() []Group
	Contains(topic string) bool
	Size() int
}

// Corpus is the immutable, categorized set of conversation starters.
// Topics are distinct across the whole corpus; a topic repeated in a later
// category is kept only under the first one.
type Corpus struct {
	groups []Group
	owner  map[string]Category
	size   int
}

// NewCorpus validates groups and arranges them in the fixed category order.
func NewCorpus(groups []Group) (*Corpus, error) {
	byCategory := make(map[Category][]string, len(order))
	for _, g := range groups {
		if !g.Category.Known() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, g.Category)
		}
		if _, dup := byCategory[g.Category]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, g.Category)
		}
		byCategory[g.Category] = g.Topics
	}

	c := &Corpus{
		groups: make([]Group, 0, len(order)),
		owner:  make(map[string]Category),
	}
	for _, category := range order {
		raw, ok := byCategory[category]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingCategory, category)
		}

		topics := make([]string, 0, len(raw))
		for i, t := range raw {
			if strings.TrimSpace(t) == "" {
				return nil, fmt.Errorf("%w: %s[%d]", ErrBlankTopic, category, i)
			}
			if _, seen := c.owner[t]; seen {
				continue
			}
			c.owner[t] = category
			topics = append(topics, t)
		}
		if len(topics) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyCategory, category)
		}

		c.groups = append(c.groups, Group{Category: category, Topics: topics})
		c.size += len(topics)
	}

	return c, nil
}

// MustNewCorpus is NewCorpus that panics on invalid input. Meant for static seeds.
func MustNewCorpus(groups []Group) *Corpus {
	c, err := NewCorpus(groups)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the corpus built from Seed.
func Default() *Corpus {
	return defaultCorpus
}

var defaultCorpus = MustNewCorpus(Seed())

// Categories returns the categories in enumeration order.
func (c *Corpus) Categories() []Category {
	out := make([]Category, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Category
	}
	return out
}

// Topics returns a copy of the topics of one category, nil when unknown.
func (c *Corpus) Topics(category Category) []string {
	for _, g := range c.groups {
		if g.Category == category {
			return append([]string(nil), g.Topics...)
		}
	}
	return nil
}

// Groups returns a deep copy of the corpus.
func (c *Corpus) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Category: g.Category, Topics: append([]string(nil), g.Topics...)}
	}
	return out
}

// All flattens the corpus in category order.
func (c *Corpus) All() []string {
	out := make([]string, 0, c.size)
	for _, g := range c.groups {
		out = append(out, g.Topics...)
	}
	return out
}

// Contains reports whether topic belongs to the corpus.
func (c *Corpus) Contains(topic string) bool {
	_, ok := c.owner[topic]
	return ok
}

// CategoryOf returns the category a topic is filed under.
func (c *Corpus) CategoryOf(topic string) (Category, bool) {
	category, ok := c.owner[topic]
	return category, ok
}

// Size is the number of distinct topics.
func (c *Corpus) Size() int {
	return c.size
}
