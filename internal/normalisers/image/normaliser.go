// Package image extracts text from raster images through the OCR
// capability. Without OCR images carry no text and are unsupported.
package image

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles scanned images.
type Normaliser struct {
	ocr driven.OCRService
}

// New creates an image normaliser backed by ocr. A nil ocr yields a
// normaliser that rejects every document as unsupported.
func New(ocr driven.OCRService) *Normaliser {
	return &Normaliser{ocr: ocr}
}

// Name returns the extraction strategy name.
func (n *Normaliser) Name() string { return "image" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"image/png", "image/jpeg", "image/tiff"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise recognises the image text.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.ocr == nil {
		return nil, domain.NewError(domain.KindUnsupportedFormat, "%s: image text needs an OCR provider", raw.URI)
	}

	text, err := n.ocr.Recognize(ctx, driven.CapabilityRequest{
		Content:  raw.Content,
		MIMEType: raw.DeclaredMIME,
	})
	if err != nil {
		return nil, err
	}

	doc := common.NewDocument(raw, "", common.CleanText(text))
	doc.Metadata.PageCount = 1
	doc.Metadata.SetExtra("ocr_engine", n.ocr.Name())
	return doc, nil
}
