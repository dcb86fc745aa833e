package assistant

import (
	"fmt"
	"slices"
	"strings"
	"text/template"
)

// Need is live data an intent template can use.
type Need string

const (
	NeedProgress Need = "progress"
	NeedStatus   Need = "status"
	NeedFacility Need = "facility"
	NeedPlan     Need = "plan"
)

// Intent is a canned answer with the keywords that select it.
type Intent struct {
	ID string `json:"id"`
	// QuickReply is the chip text offered to caregivers. Empty means the
	// intent is not offered as a chip.
	QuickReply string   `json:"quick_reply,omitempty"`
	Keywords   []string `json:"keywords"`
	// Priority breaks ties between equally scored intents, lower wins.
	Priority int    `json:"priority"`
	Template string `json:"template"`
	// LiveTemplate is used instead of Template when all Needs are
	// available.
	LiveTemplate string `json:"live_template,omitempty"`
	Needs        []Need `json:"needs,omitempty"`
	// Service filters facilities for NeedFacility.
	Service  string `json:"service,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// QuickReply is a chip offered in the chat.
type QuickReply struct {
	IntentID string `json:"intent_id"`
	Text     string `json:"text"`
}

type compiled struct {
	Intent
	static *template.Template
	live   *template.Template
}

// Table is the read-only intent table.
type Table struct {
	greeting string
	intents  []compiled
	fallback int
}

// NewTable validates intents and compiles their templates. Exactly one
// intent must be the fallback.
func NewTable(greeting string, intents ...Intent) (*Table, error) {
	res := &Table{greeting: greeting, fallback: -1}
	seen := make(map[string]struct{}, len(intents))
	for i, v := range intents {
		if v.ID == "" {
			return nil, fmt.Errorf("intent #%d has no id", i+1)
		}
		if _, ok := seen[v.ID]; ok {
			return nil, fmt.Errorf("duplicate intent %q", v.ID)
		}
		seen[v.ID] = struct{}{}

		if v.Fallback {
			if res.fallback >= 0 {
				return nil, fmt.Errorf("intent %q is a second fallback", v.ID)
			}
			res.fallback = i
		} else if len(v.Keywords) == 0 {
			return nil, fmt.Errorf("intent %q has no keywords", v.ID)
		}

		v.Keywords = normalize(v.Keywords)
		v.Needs = slices.Clone(v.Needs)
		c := compiled{Intent: v}
		var err error
		if c.static, err = parse(v.ID, v.Template); err != nil {
			return nil, err
		}
		if v.LiveTemplate != "" {
			if c.live, err = parse(v.ID+"-live", v.LiveTemplate); err != nil {
				return nil, err
			}
		}
		res.intents = append(res.intents, c)
	}
	if res.fallback < 0 {
		return nil, fmt.Errorf("intent table has no fallback intent")
	}
	return res, nil
}

func parse(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("intent %q has an empty template", name)
	}
	res, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("intent %q: %w", name, err)
	}
	return res, nil
}

func normalize(kw []string) []string {
	res := make([]string, 0, len(kw))
	for _, v := range kw {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(res, v) {
			res = append(res, v)
		}
	}
	return res
}

// Greeting is the first assistant message of a session.
func (t *Table) Greeting() string {
	return t.greeting
}

// Intent returns a copy of the intent by ID.
func (t *Table) Intent(id string) (Intent, bool) {
	for _, v := range t.intents {
		if v.ID == id {
			return v.Intent.clone(), true
		}
	}
	return Intent{}, false
}

// Fallback returns the fallback intent.
func (t *Table) Fallback() Intent {
	return t.intents[t.fallback].Intent.clone()
}

// QuickReplies lists the chips in table order.
func (t *Table) QuickReplies() []QuickReply {
	var res []QuickReply
	for _, v := range t.intents {
		if v.QuickReply != "" {
			res = append(res, QuickReply{IntentID: v.ID, Text: v.QuickReply})
		}
	}
	return res
}

// Match scores every intent by the number of its keywords found in the
// lower-cased text. The best score wins, ties go to the lower priority
// value and then to table order. No match is an UnknownIntent error.
func (t *Table) Match(text string) (Intent, int, error) {
	text = strings.ToLower(text)
	best, bestScore := -1, 0
	for i, v := range t.intents {
		if v.Fallback {
			continue
		}
		score := 0
		for _, kw := range v.Keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if best < 0 || score > bestScore ||
			score == bestScore && v.Priority < t.intents[best].Priority {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Intent{}, 0, UnknownIntentError(text)
	}
	return t.intents[best].Intent.clone(), bestScore, nil
}

func (t *Table) compiled(id string) compiled {
	for _, v := range t.intents {
		if v.ID == id {
			return v
		}
	}
	return t.intents[t.fallback]
}

func (i Intent) clone() Intent {
	i.Keywords = slices.Clone(i.Keywords)
	i.Needs = slices.Clone(i.Needs)
	return i
}
