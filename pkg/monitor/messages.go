package monitor

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"reservewatch/pkg/config"
	"reservewatch/pkg/probe"
)

const (
	// maxMessageRunes is Telegram's sendMessage text limit.
	maxMessageRunes = 4096
	maxDetailRunes  = 500
	truncationMark  = "\n…"
)

// UnavailableMessage is the fixed debug chat notice for an Unavailable verdict.
const UnavailableMessage = "⚠️ <b>Item is not available.</b>"

// Notification is a message bound to a chat.
type Notification struct {
	Text   string
	ChatID string
}

// StartupMessage announces the checker on the debug chat.
func StartupMessage(target *config.TargetConfig) string {
	return fmt.Sprintf("🔍 Starting the availability checker...\n<b>Watching:</b> %s / %s / %s",
		html.EscapeString(target.Model),
		html.EscapeString(target.Color),
		html.EscapeString(target.Capacity))
}

// AvailableMessage is the signal chat alert.
func AvailableMessage(target config.TargetConfig) string {
	return fmt.Sprintf("✅ <b>Desired item is Available!</b>\n"+
		"<b>Model:</b> %s\n"+
		"<b>Color:</b> %s\n"+
		"<b>Capacity:</b> %s\n"+
		"<a href=\"%s\">Click here to reserve</a>",
		html.EscapeString(target.Model),
		html.EscapeString(target.Color),
		html.EscapeString(target.Capacity),
		html.EscapeString(target.URL))
}

// ErrorMessage reports an Errored verdict; unclassified failures carry a trace.
// The result never exceeds maxMessageRunes.
func ErrorMessage(v probe.Verdict) string {
	detail := html.EscapeString(truncateRunes(strings.ToValidUTF8(v.Detail, ""), maxDetailRunes))
	if !v.Unexpected {
		return "❌ <b>Error during probe:</b> " + detail
	}

	head := "❌ <b>Unhandled failure:</b> " + detail + "\n<pre>"
	const tail = "</pre>"

	trace := html.EscapeString(strings.ToValidUTF8(v.Trace, ""))
	budget := maxMessageRunes - utf8.RuneCountInString(head) - utf8.RuneCountInString(tail)
	if utf8.RuneCountInString(trace) > budget {
		trace = cutEscaped(trace, budget-utf8.RuneCountInString(truncationMark)) + truncationMark
	}
	return head + trace + tail
}

// truncateRunes cuts s to at most n runes, marking the cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-utf8.RuneCountInString(truncationMark)]) + truncationMark
}

// cutEscaped cuts HTML-escaped text to n runes without splitting an entity.
func cutEscaped(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	out := string(r)
	if amp := strings.LastIndexByte(out, '&'); amp >= 0 && !strings.Contains(out[amp:], ";") {
		out = out[:amp]
	}
	return out
}

// StreakMessage replaces the plain Unavailable message once a streak reaches
// the configured length.
func StreakMessage(streak int, at probe.Waypoint) string {
	return fmt.Sprintf("🤔 <b>Still not available after %d checks.</b>\n"+
		"The last probe stopped at <b>%s</b>. Possible misconfiguration: check that the configured labels still match the page.",
		streak, html.EscapeString(string(at)))
}

// BuildNotification routes a verdict: Available goes to the signal chat,
// everything else to the debug chat.
func BuildNotification(v probe.Verdict, tg *config.TelegramConfig) Notification {
	switch v.Kind {
	case probe.Available:
		return Notification{Text: AvailableMessage(v.Target), ChatID: tg.SignalChatID}
	case probe.Unavailable:
		return Notification{Text: UnavailableMessage, ChatID: tg.DebugChatID}
	default:
		return Notification{Text: ErrorMessage(v), ChatID: tg.DebugChatID}
	}
}
