// Package pdf implements the basic extraction tier: pulling plain text out
// of resume PDFs without any AI call. It parses content streams with pdfcpu
// and decodes the text-showing operators directly, which is good enough for
// the single-column, text-first layouts resumes overwhelmingly use.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is the result of a basic text extraction.
type Document struct {
	// Text is the whitespace-normalized text of all pages joined by newlines.
	Text string
	// Pages holds the per-page text; empty pages are omitted.
	Pages []string
	// PageCount is the total page count of the PDF, including empty pages.
	PageCount int
}

// ExtractText parses the PDF bytes and returns the text content. It returns
// an error when the bytes are not a readable PDF or contain no extractable
// text at all (scanned image-only documents).
func ExtractText(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc := &Document{PageCount: ctx.PageCount}
	var all strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		doc.Pages = append(doc.Pages, pageText)
		if all.Len() > 0 {
			all.WriteByte('\n')
		}
		all.WriteString(pageText)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no text content found in pdf")
	}
	doc.Text = all.String()
	return doc, nil
}

// PageCount returns the number of pages without extracting any text.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

// extractPageText extracts text from a single page via pdfcpu content streams.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return decodeStream(data)
}

// pdfStringRE matches PDF string literals in parentheses: (text here)
var pdfStringRE = regexp.MustCompile(`\(([^)]*)\)`)

// decodeStream walks content-stream lines and collects the output of the
// text-showing operators (Tj, TJ, '), inserting breaks at positioning
// operators (Td, TD, T*).
func decodeStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRE.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRE.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return cleanText(sb.String())
}

// decodeLiteral handles basic PDF escape sequences inside string literals.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape (e.g. \040 for space).
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanText normalizes whitespace and drops non-printable runes.
func cleanText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

// Extractor adapts the package functions to the method set services
// consume, so tests can swap in a fake.
type Extractor struct{}

func (Extractor) ExtractText(data []byte) (*Document, error) { return ExtractText(data) }
func (Extractor) PageCount(data []byte) (int, error)         { return PageCount(data) }
