package intent

import (
	"strings"

	"github.com/talkeasy/backend/internal/model/topic"
)

// Label 表示用户输入命中的关键词分组。
type Label string

const (
	Greeting      Label = "greeting"
	Gratitude     Label = "gratitude"
	Help          Label = "help"
	Work          Label = "work"
	Hobbies       Label = "hobbies"
	Entertainment Label = "entertainment"
	Food          Label = "food"
	Unknown       Label = "unknown"
)

// Rule 关键词规则：命中任一子串即返回固定回复或从对应分类中抽取话题。
type Rule struct {
	Label    Label
	Keywords []string
	Reply    string
	Category topic.Category
}

// Fixed reports whether the rule answers with a canned string.
func (r Rule) Fixed() bool {
	return r.Reply != ""
}

// 规则按顺序匹配，先命中者优先。"hi, any work tips?" 命中问候而不是工作。
var rules = []Rule{
	{
		Label:    Greeting,
		Keywords: []string{"hello", "hi", "hey"},
		Reply:    "Hello! How can I help make your conversations more engaging today?",
	},
	{
		Label:    Gratitude,
		Keywords: []string{"thank"},
		Reply:    "You're welcome! Let me know if you need more conversation starters.",
	},
	{
		Label:    Help,
		Keywords: []string{"help", "how"},
		Reply:    "I can suggest conversation topics to help keep your discussions flowing. Try asking for topics about work, hobbies, food, or just general conversation starters!",
	},
	{
		Label:    Work,
		Keywords: []string{"work", "job", "career"},
		Category: topic.Work,
	},
	{
		Label:    Hobbies,
		Keywords: []string{"hobby", "interest", "pastime"},
		Category: topic.Hobbies,
	},
	{
		Label:    Entertainment,
		Keywords: []string{"movie", "book", "music", "show"},
		Category: topic.Entertainment,
	},
	{
		Label:    Food,
		Keywords: []string{"food", "eat", "restaurant", "cuisine"},
		Category: topic.Food,
	},
}

// Rules returns the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Match 返回第一条命中的规则。未命中（包括空输入）时 ok 为 false。
func Match(text string) (Rule, bool) {
	normalized := strings.ToLower(text)
	if normalized == "" {
		return Rule{}, false
	}

	for _, rule := range rules {
		for _, word := range rule.Keywords {
			if strings.Contains(normalized, word) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// Classify 返回输入对应的分组标签。
func Classify(text string) Label {
	rule, ok := Match(text)
	if !ok {
		return Unknown
	}
	return rule.Label
}
