// Package pdf extracts plain text from uploaded reports.
package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract reads every page of the PDF at path and returns its text with
// pages joined by newlines and doubled line breaks collapsed.
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return Clean(pages), nil
}

// Clean joins trimmed page texts and collapses "\n\n" into "\n".
func Clean(pages []string) string {
	trimmed := make([]string, len(pages))
	for i, p := range pages {
		trimmed[i] = strings.TrimSpace(p)
	}
	full := strings.Join(trimmed, "\n")
	return strings.TrimSpace(strings.ReplaceAll(full, "\n\n", "\n"))
}
