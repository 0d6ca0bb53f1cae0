// Package csv extracts comma- and tab-separated tables. Each row becomes
// one line of space-joined cells; the header row is kept as metadata.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const mimeTSV = "text/tab-separated-values"

// Normaliser handles delimited text tables.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extraction strategy name.
func (n *Normaliser) Name() string { return "csv" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv", mimeTSV}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise parses the table. Rows may have differing field counts.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.NewError(domain.KindCorruptInput, "%s: not valid UTF-8 text", raw.URI)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw.Content, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if raw.DeclaredMIME == mimeTSV || looksTabSeparated(raw.Content) {
		r.Comma = '\t'
	}

	var (
		lines  []string
		header []string
		rows   int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.KindCorruptInput, err, "%s", raw.URI)
		}
		if header == nil {
			header = record
		} else {
			rows++
		}
		if line := joinCells(record); line != "" {
			lines = append(lines, line)
		}
	}

	doc := common.NewDocument(raw, "", strings.Join(lines, "\n"))
	doc.Metadata.SetExtra("rows", strconv.Itoa(rows))
	if len(header) > 0 {
		doc.Metadata.SetExtra("header", strings.Join(header, ","))
		doc.Metadata.SetExtra("columns", strconv.Itoa(len(header)))
	}
	return doc, nil
}

func joinCells(record []string) string {
	cells := make([]string, 0, len(record))
	for _, c := range record {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, " ")
}

// looksTabSeparated reports whether the first line has tabs and no commas.
func looksTabSeparated(content []byte) bool {
	first, _, _ := bytes.Cut(content, []byte("\n"))
	return bytes.IndexByte(first, '\t') >= 0 && bytes.IndexByte(first, ',') < 0
}
