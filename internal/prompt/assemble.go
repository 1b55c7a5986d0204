// Package prompt holds the pure pieces of the turn pipeline: system
// content assembly, source-context formatting, history windowing and
// the company-name grammar. No I/O happens here, which is what makes
// the pipeline's contract testable in isolation.
package prompt

import (
	"strings"

	"github.com/atelia/agentdesk/internal/providers/llm"
)

// DefaultSystem is sent when no base prompt, agent context or source
// context resolved at all.
const DefaultSystem = "Tu es un assistant professionnel et bienveillant. Réponds de manière claire et concise."

// NotExtracted marks a listed file source whose content could not be
// extracted. The entry still appears so the model knows the document
// exists.
const NotExtracted = "[contenu non extrait]"

// FileSourceLimit caps each file entry's contribution to the assembled
// context, regardless of how much text extraction produced.
const FileSourceLimit = 4000

// HistoryLimit is the bounded history window per turn.
const HistoryLimit = 30

// SystemContent joins the non-empty parts (base prompt, agent system
// context, source context — in that order) with blank lines. If every
// part is empty it falls back to DefaultSystem.
func SystemContent(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return DefaultSystem
	}
	return strings.Join(kept, "\n\n")
}

// URLSource contributes the literal URL under a labeled line. URLs are
// recorded, never fetched.
func URLSource(url string) string {
	return "Source (URL) : " + url
}

// FileSource contributes a document's extracted text under its display
// name, truncated to FileSourceLimit. Empty text lists the document
// with the not-extracted marker.
func FileSource(name, text string) string {
	if name == "" {
		name = "document"
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "Document : " + name + "\n" + NotExtracted
	}
	return "Document : " + name + "\n" + TruncateRunes(text, FileSourceLimit)
}

// SourceContext joins individual source contributions. An empty result
// means the source section is omitted entirely, not an empty header.
func SourceContext(contributions []string) string {
	kept := make([]string, 0, len(contributions))
	for _, c := range contributions {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, "\n\n")
}

// Messages builds the ordered completion request: the system entry,
// then the history normalized (system roles dropped, empty contents
// dropped, unknown roles coerced to user), then the new user message.
func Messages(system string, history []llm.Message, userText string) []llm.Message {
	out := make([]llm.Message, 0, len(history)+2)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: system})

	for _, h := range history {
		if h.Role == llm.RoleSystem {
			continue
		}
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		role := h.Role
		if role != llm.RoleUser && role != llm.RoleAssistant {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: h.Content})
	}

	out = append(out, llm.Message{Role: llm.RoleUser, Content: userText})
	return out
}

// TruncateRunes cuts on rune boundaries so a capped contribution never
// ends in a broken UTF-8 sequence.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
