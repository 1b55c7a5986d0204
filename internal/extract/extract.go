// Package extract turns an uploaded source file into prompt text.
// Extraction is best-effort by contract: a file that cannot be read
// yields no text, never an error that could fail a turn.
package extract

import (
	"bytes"
	"strings"

	"code.sajari.com/docconv"
)

// RawTextLimit caps how much of a text-family file is read into the
// prompt context.
const RawTextLimit = 20000

// Text extracts prompt text from file bytes, routed by MIME family:
//
//   - PDF: full-document extraction via docconv
//   - text-ish (text/*, CSV, JSON, Markdown): raw decode, capped at
//     RawTextLimit characters
//   - anything else: skipped
//
// ok reports whether any text was produced.
func Text(data []byte, mimeType string) (text string, ok bool) {
	mt := normalizeMime(mimeType)

	switch {
	case isPDF(mt):
		res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
		if err != nil || res == nil {
			return "", false
		}
		body := strings.TrimSpace(res.Body)
		return body, body != ""

	case isTextual(mt):
		body := truncateRunes(string(data), RawTextLimit)
		return body, strings.TrimSpace(body) != ""

	default:
		return "", false
	}
}

func normalizeMime(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	// strip parameters like "; charset=utf-8"
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func isPDF(mt string) bool {
	return mt == "application/pdf" || mt == "application/x-pdf"
}

func isTextual(mt string) bool {
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case "application/json", "application/csv", "application/x-markdown", "application/markdown":
		return true
	}
	return false
}

// truncateRunes cuts on rune boundaries so a capped file never ends in
// a broken UTF-8 sequence.
func truncateRunes(s string, n int) string {
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
