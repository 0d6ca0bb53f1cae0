// Package pdf extracts PDF documents page by page with pdfcpu. Pages that
// carry no text layer are sent to the OCR capability when one is configured.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct {
	ocr driven.OCRService
}

// Option configures the PDF normaliser.
type Option func(*Normaliser)

// WithOCR enables OCR of pages without a text layer.
func WithOCR(ocr driven.OCRService) Option {
	return func(n *Normaliser) {
		n.ocr = ocr
	}
}

// New creates a new PDF normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the extraction strategy name.
func (n *Normaliser) Name() string { return "pdf" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise parses the PDF, extracts each page's text and reads the
// information dictionary.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(bytes.NewReader(raw.Content), conf)
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: read pdf", raw.URI)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: validate pdf", raw.URI)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: page count", raw.URI)
	}

	pages := make([]string, 0, pctx.PageCount)
	ocrPages := 0
	for i := 1; i <= pctx.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(pctx, i)
		if err != nil {
			return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: page %d", raw.URI, i)
		}
		if strings.TrimSpace(text) == "" && n.ocr != nil {
			recognised, err := n.ocrPage(ctx, pctx, i)
			if err != nil {
				logger.Warn("ocr %s page %d: %v", raw.URI, i, err)
			} else if recognised != "" {
				text = recognised
				ocrPages++
			}
		}
		pages = append(pages, common.CleanText(text))
	}

	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	title := strings.TrimSpace(pctx.Title)
	if title == "" {
		title = extractTitle(text)
	}

	doc := common.NewDocument(raw, title, text)
	applyInfo(&doc.Metadata, pctx.XRefTable)
	if ocrPages > 0 {
		doc.Metadata.SetExtra("ocr_pages", strconv.Itoa(ocrPages))
	}
	return doc, nil
}

// applyInfo copies the document information dictionary into meta. The
// creation date is read from the cross-reference table, not from the
// write configuration that shares the field name.
func applyInfo(meta *domain.Metadata, xref *model.XRefTable) {
	meta.PageCount = xref.PageCount
	meta.Author = strings.TrimSpace(xref.Author)
	if t, ok := parsePDFDate(xref.CreationDate); ok {
		meta.CreatedAt = &t
	}
}

// pageText extracts the text shown by a page's content stream.
func pageText(pctx *model.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return TextFromContentStream(content), nil
}

// ocrPage recognises the images placed on a page.
func (n *Normaliser) ocrPage(ctx context.Context, pctx *model.Context, pageNr int) (string, error) {
	images, err := pdfcpu.ExtractPageImages(pctx, pageNr, false)
	if err != nil {
		return "", fmt.Errorf("extract images: %w", err)
	}

	keys := make([]int, 0, len(images))
	for k := range images {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var parts []string
	for _, k := range keys {
		img := images[k]
		data, err := io.ReadAll(img)
		if err != nil {
			return "", err
		}
		text, err := n.ocr.Recognize(ctx, driven.CapabilityRequest{
			Content:  data,
			MIMEType: "image/" + strings.ToLower(img.FileType),
		})
		if err != nil {
			return "", err
		}
		if t := strings.TrimSpace(text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// extractTitle returns the first short non-empty line of text, or "" to
// fall back to the filename.
func extractTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= 200 {
			return line
		}
	}
	return ""
}

// parsePDFDate parses the "D:YYYYMMDDHHmmSSOHH'mm'" date format. Missing
// trailing components default as the PDF reference describes.
func parsePDFDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "D:"))
	if len(s) < 4 {
		return time.Time{}, false
	}

	digits := s
	zone := ""
	if i := strings.IndexAny(s, "Zz+-"); i >= 0 {
		digits, zone = s[:i], s[i:]
	}
	if len(digits) < 4 {
		return time.Time{}, false
	}

	// Pad to YYYYMMDDHHmmSS with month and day defaulting to 01.
	pad := "00000101000000"
	if len(digits) < len(pad) {
		digits += pad[len(digits):]
	}
	t, err := time.Parse("20060102150405", digits[:14])
	if err != nil {
		return time.Time{}, false
	}

	if zone != "" && zone[0] != 'Z' && zone[0] != 'z' {
		sign := 1
		if zone[0] == '-' {
			sign = -1
		}
		z := strings.NewReplacer("'", "").Replace(zone[1:])
		var hh, mm int
		if len(z) >= 2 {
			hh, _ = strconv.Atoi(z[:2])
		}
		if len(z) >= 4 {
			mm, _ = strconv.Atoi(z[2:4])
		}
		offset := sign * (hh*3600 + mm*60)
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.FixedZone("", offset))
	}
	return t.UTC(), true
}
