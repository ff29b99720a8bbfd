package browser

import (
	"fmt"
	"strings"
)

// Selector is an XPath predicate over the rendered page.
type Selector struct {
	XPath string
	Desc  string
}

func (s Selector) String() string {
	if s.Desc != "" {
		return s.Desc
	}
	return s.XPath
}

// TextSelector matches a span whose text contains label.
func TextSelector(label string) Selector {
	return Selector{
		XPath: fmt.Sprintf("//span[contains(text(), %s)]", XPathLiteral(label)),
		Desc:  fmt.Sprintf("span containing %q", label),
	}
}

// ConfirmSelector matches the reserve button that only renders when the
// selected variant is in stock.
func ConfirmSelector() Selector {
	return Selector{XPath: "//p/button", Desc: "confirmation button"}
}

// XPathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value containing both quote kinds is built with concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	args := make([]string, 0, len(parts)*2-1)
	for i, part := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if part != "" {
			args = append(args, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}
