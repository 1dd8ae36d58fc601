// Package quiz turns raw trivia questions into a playable session and scores it.
package quiz

import "strings"

// entityReplacer covers the entities the trivia source emits in practice.
// Anything else is left as-is.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#039;", "'",
	"&apos;", "'",
	"&nbsp;", "\u00a0",
	"&copy;", "©",
	"&reg;", "®",
	"&trade;", "™",
	"&hellip;", "…",
	"&mdash;", "—",
	"&ndash;", "–",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&ldquo;", "“",
	"&rdquo;", "”",
)

// DecodeEntities replaces the fixed set of named HTML entities with their characters.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}
