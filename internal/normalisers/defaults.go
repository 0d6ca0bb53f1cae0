package normalisers

import (
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers/csv"
	"github.com/custodia-labs/docmirror/internal/normalisers/docx"
	"github.com/custodia-labs/docmirror/internal/normalisers/html"
	"github.com/custodia-labs/docmirror/internal/normalisers/image"
	"github.com/custodia-labs/docmirror/internal/normalisers/markdown"
	"github.com/custodia-labs/docmirror/internal/normalisers/pdf"
	"github.com/custodia-labs/docmirror/internal/normalisers/plaintext"
	"github.com/custodia-labs/docmirror/internal/normalisers/xlsx"
)

// RegisterDefaults registers every built-in normaliser. The image
// normaliser is only registered when an OCR service is available, so that
// images resolve to UnsupportedFormat otherwise.
func RegisterDefaults(r *Registry, ocr driven.OCRService) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(csv.New())
	r.Register(docx.New())
	r.Register(xlsx.New())

	if ocr != nil {
		r.Register(pdf.New(pdf.WithOCR(ocr)))
		r.Register(image.New(ocr))
	} else {
		r.Register(pdf.New())
	}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry(ocr driven.OCRService, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	RegisterDefaults(r, ocr)
	return r
}
