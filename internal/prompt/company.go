package prompt

import (
	"regexp"
	"strings"
)

// companyRe implements the grammar
//
//	"tu travailles pour " <capture> (comma | newline | end)
//
// over a free-text system prompt. One grammar, one place; callers that
// personalize greetings all go through here.
var companyRe = regexp.MustCompile(`(?i)tu travailles pour\s+([^,\n]+)`)

// CompanyName extracts the company an agent claims to work for from its
// system prompt, or "" when the prompt does not say.
func CompanyName(systemPrompt string) string {
	m := companyRe.FindStringSubmatch(systemPrompt)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
