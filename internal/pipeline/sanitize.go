package pipeline

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var alignValue = regexp.MustCompile(`^(left|center|right)$`)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

// Sanitize removes any markup outside the user-generated-content allowlist.
// Goldmark already escapes raw HTML; this is the last gate before markup is
// handed to a browser.
func Sanitize(fragment string) string {
	return strings.TrimSpace(previewSanitizer().Sanitize(fragment))
}

func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("align").Matching(alignValue).OnElements("th", "td")
		previewPolicy = policy
	})
	return previewPolicy
}
