package responder

import (
	"context"
	"math/rand"
	"strings"
	"unicode"

	"github.com/ccastromar/chat-relay/internal/config"
)

const SourceRules = "rules"

// fallbackReply is used only when the rule table has no templates.
const fallbackReply = "I'm not sure how to respond to that yet."

// RuleResponder is the local last-resort tier. It never fails.
type RuleResponder struct {
	rules     []config.Rule
	templates []string
	pick      func(n int) int
}

func NewRuleResponder(r *config.Rules) *RuleResponder {
	rr := &RuleResponder{pick: rand.Intn}
	if r != nil {
		rr.rules = r.Rules
		rr.templates = r.Templates
	}
	return rr
}

func (r *RuleResponder) Name() string { return SourceRules }

func (r *RuleResponder) Respond(_ context.Context, message string) (string, error) {
	return r.Reply(message), nil
}

// Match returns the first rule, in table order, with a keyword found in
// message.
func (r *RuleResponder) Match(message string) (config.Rule, bool) {
	words := tokenize(message)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if hasKeyword(words, kw, rule.Plural) {
				return rule, true
			}
		}
	}
	return config.Rule{}, false
}

// Reply returns the matched rule's reply or a generic template echoing
// message.
func (r *RuleResponder) Reply(message string) string {
	if rule, ok := r.Match(message); ok {
		return rule.Reply
	}
	if len(r.templates) == 0 {
		return fallbackReply
	}
	tpl := r.templates[r.pick(len(r.templates))]
	return strings.ReplaceAll(tpl, config.MessagePlaceholder, message)
}

// tokenize keeps inner apostrophes ("what's") and drops quoting ones ('hi').
func tokenize(message string) []string {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	words := fields[:0]
	for _, f := range fields {
		if w := strings.Trim(f, "'"); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// hasKeyword matches whole words, and keyword+"s" when plural is set.
// Keywords with spaces match a run of consecutive words.
func hasKeyword(words []string, kw string, plural bool) bool {
	if strings.Contains(kw, " ") {
		joined := " " + strings.Join(words, " ") + " "
		return strings.Contains(joined, " "+kw+" ") || (plural && strings.Contains(joined, " "+kw+"s "))
	}
	for _, w := range words {
		if w == kw || (plural && w == kw+"s") {
			return true
		}
	}
	return false
}
