package monitor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"reservewatch/pkg/config"
	"reservewatch/pkg/probe"
)

func TestAvailableMessageEscapesLabels(t *testing.T) {
	msg := AvailableMessage(config.TargetConfig{
		URL:      "https://reserve.example.com/?a=1&b=2",
		Model:    "Phone <Pro>",
		Color:    "Black & White",
		Capacity: "1TB",
	})

	for _, want := range []string{
		"Phone &lt;Pro&gt;",
		"Black &amp; White",
		`<a href="https://reserve.example.com/?a=1&amp;b=2">`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %s", want, msg)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	plain := ErrorMessage(probe.Verdict{Kind: probe.Errored, Detail: "color: browser wait: <closed>"})
	if !strings.Contains(plain, "color: browser wait: &lt;closed&gt;") {
		t.Errorf("Detail not escaped: %s", plain)
	}
	if strings.Contains(plain, "<pre>") {
		t.Errorf("Classified faults carry no trace: %s", plain)
	}

	unexpected := ErrorMessage(probe.Verdict{Kind: probe.Errored, Detail: "boom", Trace: "goroutine 1 [running]:", Unexpected: true})
	if !strings.Contains(unexpected, "<pre>goroutine 1 [running]:</pre>") {
		t.Fatalf("Expected trace block: %s", unexpected)
	}
}

func TestErrorMessageFitsTelegramLimit(t *testing.T) {
	tests := []struct {
		name string
		v    probe.Verdict
	}{
		{"long detail", probe.Verdict{Kind: probe.Errored, Detail: strings.Repeat("d", 6000)}},
		{"long detail and trace", probe.Verdict{Kind: probe.Errored, Detail: strings.Repeat("d", 6000), Trace: strings.Repeat("t", 5000), Unexpected: true}},
		{"escaped trace", probe.Verdict{Kind: probe.Errored, Detail: strings.Repeat("<&>", 2000), Trace: strings.Repeat("a&b<c", 3000), Unexpected: true}},
		{"multibyte", probe.Verdict{Kind: probe.Errored, Detail: strings.Repeat("가", 6000), Trace: strings.Repeat("한글", 4000), Unexpected: true}},
	}

	for _, tt := range tests {
		msg := ErrorMessage(tt.v)
		if n := utf8.RuneCountInString(msg); n > 4096 {
			t.Errorf("%s: message has %d runes", tt.name, n)
		}
		if !utf8.ValidString(msg) {
			t.Errorf("%s: message is not valid UTF-8", tt.name)
		}
		if !strings.Contains(msg, "…") {
			t.Errorf("%s: expected a truncation mark", tt.name)
		}
		if tt.v.Unexpected && !strings.HasSuffix(msg, "</pre>") {
			t.Errorf("%s: trace block must stay closed", tt.name)
		}
	}
}

func TestCutEscapedKeepsEntitiesWhole(t *testing.T) {
	got := cutEscaped("a&amp;b", 4)
	if got != "a" {
		t.Errorf("Expected the partial entity to be dropped, got %q", got)
	}
	if got := cutEscaped("a&amp;b", 6); got != "a&amp;" {
		t.Errorf("Expected a whole entity to be kept, got %q", got)
	}
}

func TestBuildNotificationRouting(t *testing.T) {
	tg := &config.TelegramConfig{SignalChatID: signalChat, DebugChatID: debugChat}

	cases := []struct {
		kind probe.Kind
		chat string
	}{
		{probe.Available, signalChat},
		{probe.Unavailable, debugChat},
		{probe.Errored, debugChat},
	}
	for _, tc := range cases {
		n := BuildNotification(probe.Verdict{Kind: tc.kind, Target: testTarget}, tg)
		if n.ChatID != tc.chat {
			t.Errorf("%v: expected chat %q, got %q", tc.kind, tc.chat, n.ChatID)
		}
		if n.Text == "" {
			t.Errorf("%v: empty message", tc.kind)
		}
	}
}
