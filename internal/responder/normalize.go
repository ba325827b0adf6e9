package responder

import "strings"

const (
	humanMarker = "Human:"
	botMarker   = "Bot:"
)

// PromptTemplate wraps a message as a one-turn dialogue for plain
// text-generation models.
const PromptTemplate = "Human: %s\nBot:"

// Normalize turns raw generated text into a reply: the echoed prompt is
// removed, anything from a new "Human:" turn on is dropped, and the
// remaining dialogue markers are stripped.
func Normalize(prompt, generated string) string {
	text := generated
	if p := strings.TrimSpace(prompt); p != "" {
		text = strings.Replace(text, p, "", 1)
	}
	text = strings.TrimSpace(text)

	// the model may restate the human turn before answering
	if strings.HasPrefix(text, humanMarker) {
		if j := strings.Index(text, botMarker); j >= 0 {
			text = text[j+len(botMarker):]
		}
	}
	if i := strings.Index(text, humanMarker); i >= 0 {
		text = text[:i]
	}
	text = strings.ReplaceAll(text, botMarker, "")
	return strings.TrimSpace(text)
}
