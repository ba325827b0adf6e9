package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// unsetEnv removes key for the duration of the test; envconfig rejects
// empty booleans, so t.Setenv(key, "") is not enough.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadRules_Default(t *testing.T) {
	r, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}
	if len(r.Rules) == 0 || len(r.Templates) == 0 {
		t.Fatalf("expected non-empty rules/templates, got %d/%d", len(r.Rules), len(r.Templates))
	}
	if r.Rules[0].Name != "greeting" {
		t.Fatalf("greeting must be evaluated first, got %q", r.Rules[0].Name)
	}
	for _, tpl := range r.Templates {
		if !strings.Contains(tpl, MessagePlaceholder) {
			t.Fatalf("template %q does not echo the message", tpl)
		}
	}
}

func TestLoadRules_FileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := `
rules:
  - name: pizza
    keywords: [" Pizza "]
    reply: "Pizza is great."
templates:
  - "You said {message}"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	r, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}
	if len(r.Rules) != 1 || r.Rules[0].Keywords[0] != "pizza" {
		t.Fatalf("expected normalized keyword, got %+v", r.Rules)
	}
}

func TestLoadRules_NotFound(t *testing.T) {
	if _, err := LoadRules("non-existent-rules-12345.yaml"); err == nil {
		t.Fatalf("expected error when loading a missing rules file")
	}
}

func TestParseRules_Invalid(t *testing.T) {
	cases := map[string]string{
		"no templates": "rules:\n  - name: a\n    keywords: [a]\n    reply: b\n",
		"no keywords":  "rules:\n  - name: a\n    reply: b\ntemplates: [\"x {message}\"]\n",
		"empty reply":  "rules:\n  - name: a\n    keywords: [a]\n    reply: \" \"\ntemplates: [\"x\"]\n",
		"no name":      "rules:\n  - keywords: [a]\n    reply: b\ntemplates: [\"x\"]\n",
		"bad yaml":     "rules: [",
	}
	for name, data := range cases {
		if _, err := ParseRules([]byte(data)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	unsetEnv(t, "RENDER")
	env, err := LoadEnv(missingEnvFile(t))
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if env.OpenRouterBaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected base url: %s", env.OpenRouterBaseURL)
	}
	if env.OpenRouterKeyPrefix != "sk-or-v1-" {
		t.Fatalf("unexpected key prefix: %s", env.OpenRouterKeyPrefix)
	}
	if env.LLMTimeout != 10*time.Second {
		t.Fatalf("expected a 10s provider timeout, got %v", env.LLMTimeout)
	}
	if !env.FallbackEnabled {
		t.Fatalf("fallback should be enabled by default")
	}
	if !env.DebugEnabled() {
		t.Fatalf("debug endpoints should be enabled outside Render")
	}
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	unsetEnv(t, "RENDER")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("RELAY_TEST_ONLY=1\nHF_MODEL=gpt2\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("RELAY_TEST_ONLY")
		os.Unsetenv("HF_MODEL")
	})

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if env.HFModel != "gpt2" {
		t.Fatalf("expected HF_MODEL from env file, got %q", env.HFModel)
	}
}

func TestLoadEnv_RenderSkipsDotEnv(t *testing.T) {
	t.Setenv("RENDER", "true")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("HF_MODEL=gpt2\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("HF_MODEL") })

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if env.HFModel == "gpt2" {
		t.Fatalf("env file must not be loaded on Render")
	}
	if !env.Render {
		t.Fatalf("expected Render flag to be set")
	}
	if env.DebugEnabled() {
		t.Fatalf("debug endpoints should be off on Render unless requested")
	}
}

func TestLoadEnv_UnknownSecondary(t *testing.T) {
	t.Setenv("SECONDARY_PROVIDER", "gemini")
	if _, err := LoadEnv(missingEnvFile(t)); err == nil {
		t.Fatalf("expected error for unknown secondary provider")
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret(""); got != "None" {
		t.Fatalf("expected None, got %q", got)
	}
	if got := MaskSecret("short"); got != "*****" {
		t.Fatalf("expected fully masked short secret, got %q", got)
	}
	got := MaskSecret("sk-or-v1-0123456789abcdef")
	if got != "sk-or-v1..." {
		t.Fatalf("unexpected preview %q", got)
	}
}

func TestMaskSecret_MultiByte(t *testing.T) {
	got := MaskSecret("clé-secrète-très-longue")
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if got != "clé-secr..." {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := MaskSecret("ñññ"); got != "***" {
		t.Fatalf("expected one mask per rune, got %q", got)
	}
}

func TestLoadRules_PluralFlag(t *testing.T) {
	r, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}
	plural := map[string]bool{}
	for _, rule := range r.Rules {
		plural[rule.Name] = rule.Plural
	}
	if !plural["animal"] || !plural["fruit"] || !plural["color"] {
		t.Fatalf("noun rules should accept plurals: %v", plural)
	}
	if plural["greeting"] || plural["farewell"] {
		t.Fatalf("short greeting keywords must not take plurals: %v", plural)
	}
}
