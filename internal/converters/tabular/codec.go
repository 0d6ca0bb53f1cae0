// Package tabular implements the tabular (CSV) interchange format.
//
// A document is written as a fixed six-column table, one row per field:
//
//	record,key,value,start,end,confidence
//	document,hash,<hash>,,,
//	metadata,author,<author>,,,
//	extra,<key>,<value>,,,
//	entity,<type>,<text>,<start>,<end>,<confidence>
//	embedding,<dimensions>,<space separated values>,,,
//	document,text,<text>,,,
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/custodia-labs/docmirror/internal/converters/layout"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.Codec = (*Codec)(nil)

// Header is the first row of every table.
var Header = []string{"record", "key", "value", "start", "end", "confidence"}

const (
	recDocument  = "document"
	recMetadata  = "metadata"
	recExtra     = "extra"
	recEntity    = "entity"
	recEmbedding = "embedding"
)

// Codec renders documents as CSV tables.
type Codec struct{}

// New creates a CSV codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the tabular format.
func (c *Codec) Format() domain.Format { return domain.FormatTabular }

// Extension returns "csv".
func (c *Codec) Extension() string { return "csv" }

// Encode renders doc. Empty optional fields are omitted.
func (c *Codec) Encode(doc *domain.NormalizedDocument) ([]byte, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	rows := [][]string{Header}
	field := func(rec, key, value string) {
		rows = append(rows, []string{rec, key, value, "", "", ""})
	}

	field(recDocument, "hash", doc.Hash)
	field(recDocument, "title", doc.Title)
	field(recDocument, "mimeType", doc.MIMEType)
	field(recDocument, "format", doc.Format)

	m := doc.Metadata
	if m.Author != "" {
		field(recMetadata, "author", m.Author)
	}
	if m.CreatedAt != nil {
		field(recMetadata, "createdAt", layout.FormatTime(m.CreatedAt))
	}
	if m.PageCount != 0 {
		field(recMetadata, "pageCount", strconv.Itoa(m.PageCount))
	}
	if m.Language != "" {
		field(recMetadata, "language", m.Language)
	}
	for _, k := range layout.SortedKeys(m.Extra) {
		field(recExtra, k, m.Extra[k])
	}

	for _, e := range layout.SortedEntities(doc.Entities) {
		rows = append(rows, []string{
			recEntity, string(e.Type), e.Text,
			strconv.Itoa(e.Start), strconv.Itoa(e.End), layout.FormatFloat(e.Confidence),
		})
	}

	if doc.Summary != "" {
		field(recDocument, "summary", doc.Summary)
	}
	if len(doc.Embedding) > 0 {
		field(recEmbedding, strconv.Itoa(len(doc.Embedding)), layout.FormatVector(doc.Embedding))
	}
	field(recDocument, "text", doc.Text)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a CSV table.
func (c *Codec) Decode(data []byte) (*domain.NormalizedDocument, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Header)

	header, err := r.Read()
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "decode tabular header")
	}
	for i, h := range Header {
		if header[i] != h {
			return nil, domain.NewError(domain.KindCorruptInput, "decode tabular: unexpected column %q", header[i])
		}
	}

	doc := &domain.NormalizedDocument{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.KindCorruptInput, err, "decode tabular")
		}
		if err := applyRow(doc, row); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func applyRow(doc *domain.NormalizedDocument, row []string) error {
	rec, key, value := row[0], row[1], row[2]
	switch rec {
	case recDocument:
		switch key {
		case "hash":
			doc.Hash = value
		case "title":
			doc.Title = value
		case "mimeType":
			doc.MIMEType = value
		case "format":
			doc.Format = value
		case "summary":
			doc.Summary = value
		case "text":
			doc.Text = value
		}
	case recMetadata:
		switch key {
		case "author":
			doc.Metadata.Author = value
		case "createdAt":
			t, err := layout.ParseTime(value)
			if err != nil {
				return err
			}
			doc.Metadata.CreatedAt = t
		case "pageCount":
			n, err := strconv.Atoi(value)
			if err != nil {
				return domain.WrapError(domain.KindCorruptInput, err, "pageCount %q", value)
			}
			doc.Metadata.PageCount = n
		case "language":
			doc.Metadata.Language = value
		}
	case recExtra:
		doc.Metadata.SetExtra(key, value)
	case recEntity:
		start, err1 := strconv.Atoi(row[3])
		end, err2 := strconv.Atoi(row[4])
		conf, err3 := strconv.ParseFloat(row[5], 64)
		if err := errors.Join(err1, err2, err3); err != nil {
			return domain.WrapError(domain.KindCorruptInput, err, "entity row")
		}
		doc.Entities = append(doc.Entities, domain.Entity{
			Type:       domain.EntityType(key),
			Text:       value,
			Start:      start,
			End:        end,
			Confidence: conf,
		})
	case recEmbedding:
		v, err := layout.ParseVector(value)
		if err != nil {
			return err
		}
		doc.Embedding = v
	default:
		return domain.NewError(domain.KindCorruptInput, "decode tabular: unknown record %q", rec)
	}
	return nil
}
