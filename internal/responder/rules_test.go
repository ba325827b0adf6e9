package responder

import (
	"context"
	"strings"
	"testing"

	"github.com/ccastromar/chat-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRules(t *testing.T) *RuleResponder {
	t.Helper()
	r, err := config.LoadRules("")
	require.NoError(t, err)
	return NewRuleResponder(r)
}

func TestRuleResponder_Keywords(t *testing.T) {
	rr := defaultRules(t)

	cases := map[string]string{
		"hello there":            "Hello! How are you doing today?",
		"HEY!":                   "Hello! How are you doing today?",
		"ok, bye":                "Goodbye! Have a great day!",
		"tell me about animals":  "Animals are amazing! Dogs, cats, elephants, lions and dolphins are some of my favorites.",
		"favourite Colours?":     "Colors are wonderful! Blue, red, green and yellow are some popular ones.",
		"what time is it":        "I don't have a clock, but your device can tell you the time.",
		"I need some help, pls.": "I can chat about fruits, colors, animals and the weather. Say hello or ask me something!",
	}
	for msg, want := range cases {
		assert.Equal(t, want, rr.Reply(msg), msg)
	}
}

func TestRuleResponder_WholeWordsOnly(t *testing.T) {
	rr := defaultRules(t)

	// "this" contains "hi", "sometimes" contains "time"
	_, ok := rr.Match("this happens sometimes")
	assert.False(t, ok)

	_, ok = rr.Match("hippo")
	assert.False(t, ok)
}

func TestRuleResponder_FirstRuleWins(t *testing.T) {
	rr := defaultRules(t)

	rule, ok := rr.Match("goodbye and hello")
	require.True(t, ok)
	assert.Equal(t, "greeting", rule.Name)
}

func TestRuleResponder_GenericTemplate(t *testing.T) {
	rr := defaultRules(t)
	rr.pick = func(n int) int { return n - 1 }

	got := rr.Reply("xyz123")
	assert.Equal(t, "Thanks for sharing \"xyz123\". I'm a simple bot, so I may not understand everything.", got)
}

func TestRuleResponder_GenericEchoesMessage(t *testing.T) {
	rr := defaultRules(t)

	for i := 0; i < 20; i++ {
		assert.Contains(t, rr.Reply("quantum flux capacitor"), "quantum flux capacitor")
	}
}

func TestRuleResponder_Deterministic(t *testing.T) {
	rr := defaultRules(t)

	first := rr.Reply("hi")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, rr.Reply("hi"))
	}
}

func TestRuleResponder_NeverEmpty(t *testing.T) {
	rr := defaultRules(t)
	for _, msg := range []string{"", " ", "???", "日本語", strings.Repeat("a", 5000)} {
		got, err := rr.Respond(context.Background(), msg)
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(got), "message %q", msg)
	}

	empty := NewRuleResponder(nil)
	assert.Equal(t, fallbackReply, empty.Reply("anything"))
}

func TestRuleResponder_MultiWordKeyword(t *testing.T) {
	rr := NewRuleResponder(&config.Rules{
		Rules:     []config.Rule{{Name: "thanks", Keywords: []string{"thank you"}, Reply: "You're welcome!"}},
		Templates: []string{"{message}"},
	})

	assert.Equal(t, "You're welcome!", rr.Reply("Thank you, bot"))
	assert.Equal(t, "thank goodness", rr.Reply("thank goodness"))
}

func TestRuleResponder_PluralOnlyWhereAllowed(t *testing.T) {
	rr := defaultRules(t)

	for _, msg := range []string{"what is his name", "byes", "heys you"} {
		_, ok := rr.Match(msg)
		assert.False(t, ok, msg)
	}

	rule, ok := rr.Match("i like fruits")
	require.True(t, ok)
	assert.Equal(t, "fruit", rule.Name)
}

func TestRuleResponder_QuotedKeyword(t *testing.T) {
	rr := defaultRules(t)

	rule, ok := rr.Match("say 'hi'")
	require.True(t, ok)
	assert.Equal(t, "greeting", rule.Name)

	// inner apostrophes stay part of the word
	_, ok = rr.Match("it's")
	assert.False(t, ok)
}
