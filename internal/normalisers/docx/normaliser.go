// Package docx extracts Office Open XML word-processing documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers/common"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxPartSize bounds how much of a single zip part is read.
const maxPartSize = 64 << 20

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extraction strategy name.
func (n *Normaliser) Name() string { return "docx" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise converts a DOCX document to a normalised document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: not a zip archive", raw.URI)
	}

	body, ok, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: word/document.xml", raw.URI)
	}
	if !ok {
		return nil, domain.NewError(domain.KindCorruptInput, "%s: missing word/document.xml", raw.URI)
	}
	text, paragraphs, err := parseDocumentXML(body)
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "%s: word/document.xml", raw.URI)
	}

	props := readCoreProps(reader)

	doc := common.NewDocument(raw, props.Title, text)
	doc.Metadata.Author = strings.TrimSpace(props.Creator)
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(props.Created)); err == nil {
		t = t.UTC()
		doc.Metadata.CreatedAt = &t
	}
	doc.Metadata.SetExtra("paragraphs", strconv.Itoa(paragraphs))
	return doc, nil
}

// readPart returns the bytes of a named zip part.
func readPart(reader *zip.Reader, name string) ([]byte, bool, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, true, err
		}
		defer rc.Close()
		content, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, true, err
		}
		return content, true, nil
	}
	return nil, false, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// parseDocumentXML extracts body paragraphs, then table rows with cells
// joined by tabs.
func parseDocumentXML(content []byte) (string, int, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", 0, err
	}

	var lines []string
	for _, para := range doc.Body.Paragraphs {
		lines = append(lines, para.text())
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				parts := make([]string, 0, len(cell.Paragraphs))
				for _, p := range cell.Paragraphs {
					parts = append(parts, p.text())
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			lines = append(lines, strings.Join(cells, "\t"))
		}
	}

	return common.CleanText(strings.Join(lines, "\n")), len(doc.Body.Paragraphs), nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
	Created string `xml:"created"`
}

// readCoreProps reads docProps/core.xml. Missing or malformed properties
// are not an error.
func readCoreProps(reader *zip.Reader) coreXML {
	var core coreXML
	content, ok, err := readPart(reader, "docProps/core.xml")
	if err != nil || !ok {
		return core
	}
	if err := xml.Unmarshal(content, &core); err != nil {
		return coreXML{}
	}
	core.Title = strings.TrimSpace(core.Title)
	return core
}
