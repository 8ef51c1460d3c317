package trending

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// titleSeparators are the runes uploaders use to split a title into topic and
// channel branding, including the fullwidth variants.
const titleSeparators = "|｜-－—"

// extractTopic takes the leading segment of a video title, NFC-normalised and
// trimmed. The feed mixes composed and decomposed unicode, so titles are
// normalised before any comparison.
func extractTopic(title string) string {
	title = norm.NFC.String(title)
	if idx := strings.IndexAny(title, titleSeparators); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}
