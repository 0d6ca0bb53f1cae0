// Package xlsx extracts spreadsheet workbooks with excelize. Each sheet is
// rendered as a heading line followed by its rows as space-joined cells.
package xlsx

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles OOXML spreadsheets.
type Normaliser struct{}

// New creates a new spreadsheet normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extraction strategy name.
func (n *Normaliser) Name() string { return "xlsx" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel.sheet.macroenabled.12",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise reads every sheet in workbook order. PageCount is the number
// of sheets.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: open workbook", raw.URI)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Debug("close workbook %s: %v", raw.URI, cerr)
		}
	}()

	sheets := f.GetSheetList()
	var (
		sections []string
		rowCount int
	)
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: sheet %q", raw.URI, sheet)
		}

		lines := []string{sheet}
		for _, row := range rows {
			if line := joinCells(row); line != "" {
				lines = append(lines, line)
				rowCount++
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	var title string
	props, err := f.GetDocProps()
	if err != nil {
		logger.Debug("doc props %s: %v", raw.URI, err)
	}
	if props != nil {
		title = strings.TrimSpace(props.Title)
	}

	doc := common.NewDocument(raw, title, strings.Join(sections, "\n\n"))
	doc.Metadata.PageCount = len(sheets)
	doc.Metadata.SetExtra("sheets", strings.Join(sheets, ","))
	doc.Metadata.SetExtra("rows", strconv.Itoa(rowCount))
	if props != nil {
		doc.Metadata.Author = strings.TrimSpace(props.Creator)
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(props.Created)); err == nil {
			t = t.UTC()
			doc.Metadata.CreatedAt = &t
		}
	}
	return doc, nil
}

func joinCells(row []string) string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, " ")
}
