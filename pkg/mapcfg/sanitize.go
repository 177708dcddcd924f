package mapcfg

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy

	popupPolicyOnce sync.Once
	popupPolicy     *bluemonday.Policy
)

// SanitizeLabel strips all markup from configured label text. Use it for
// strings that render as text content: popup link labels, titles, column
// headings sourced from config documents.
func SanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(labelPolicy.Sanitize(trimmed))
}

// SanitizePopupHTML reduces configured popup markup to the inline vocabulary
// popup bubbles carry: anchors with http/https/mailto targets plus basic
// emphasis elements. Everything else, scripts and event handlers included,
// is stripped.
func SanitizePopupHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(popupSanitizer().Sanitize(trimmed))
}

func popupSanitizer() *bluemonday.Policy {
	popupPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("a", "strong", "em", "span", "br", "small")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("class").OnElements("a", "span", "small")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireParseableURLs(true)
		// Edit links are app-relative, so schemeless URLs must stay valid.
		policy.AllowRelativeURLs(true)
		popupPolicy = policy
	})
	return popupPolicy
}
