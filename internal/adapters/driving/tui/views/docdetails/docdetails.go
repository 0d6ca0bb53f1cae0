// Package docdetails provides the document details view component for the TUI.
package docdetails

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// View is the document details view.
type View struct {
	styles        *styles.Styles
	actionService driving.ResultActionService
	ctx           context.Context

	details      *driving.DocumentDetails
	back         messages.ViewType
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
}

// NewView creates a new document details view.
func NewView(s *styles.Styles, actionService driving.ResultActionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:        s,
		actionService: actionService,
		ctx:           context.Background(),
		back:          messages.ViewDocuments,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context actions run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDetails sets the document to display and the view Esc returns to.
func (v *View) SetDetails(details *driving.DocumentDetails, back messages.ViewType) {
	v.details = details
	v.back = back
	v.scrollOffset = 0
	v.err = nil
	v.notice = ""
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatusMessage:
		v.notice = msg.Text
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "c":
		return v, v.copyPath()
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	return v, nil
}

// copyPath copies the first source path of the document.
func (v *View) copyPath() tea.Cmd {
	if v.details == nil || len(v.details.Paths) == 0 || v.actionService == nil {
		return nil
	}
	ctx, svc := v.ctx, v.actionService
	result := &domain.SearchResult{Hash: v.details.Document.Hash, Path: v.details.Paths[0]}
	return func() tea.Msg {
		if err := svc.CopyToClipboard(ctx, result); err != nil {
			return messages.StatusMessage{Text: "Copy: " + err.Error()}
		}
		return messages.StatusMessage{Text: "Copied " + result.Path}
	}
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent lays out the record as label/value lines.
func (v *View) buildContent() []string {
	if v.details == nil || v.details.Document == nil {
		return nil
	}
	doc := v.details.Document
	md := doc.Metadata

	lines := []string{
		formatField("Hash", doc.Hash),
		formatField("Title", doc.Title),
		formatField("Type", fmt.Sprintf("%s (%s)", doc.MIMEType, doc.Format)),
	}
	if md.Language != "" {
		lines = append(lines, formatField("Language", md.Language))
	}
	if md.Author != "" {
		lines = append(lines, formatField("Author", md.Author))
	}
	if md.CreatedAt != nil {
		lines = append(lines, formatField("Created", md.CreatedAt.Format(time.DateTime)))
	}
	if md.PageCount > 0 {
		lines = append(lines, formatField("Pages", fmt.Sprintf("%d", md.PageCount)))
	}
	if !doc.NormalizedAt.IsZero() {
		lines = append(lines, formatField("Normalised", doc.NormalizedAt.Local().Format(time.DateTime)))
	}

	lines = append(lines, "", "Paths:")
	for _, p := range v.details.Paths {
		lines = append(lines, "  "+p)
	}

	if doc.Summary != "" {
		lines = append(lines, "", "Summary:", "  "+doc.Summary)
	}

	if len(doc.Entities) > 0 {
		lines = append(lines, "", "Entities:")
		for _, e := range doc.Entities {
			lines = append(lines, fmt.Sprintf("  %-8s %s", e.Type, e.Text))
		}
	}

	if len(md.Extra) > 0 {
		lines = append(lines, "", "Metadata:")
		keys := make([]string, 0, len(md.Extra))
		for k := range md.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			value := md.Extra[k]
			if len(value) > 50 {
				value = value[:47] + "..."
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", k, value))
		}
	}

	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

// View renders the document details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.details == nil:
		b.WriteString(v.styles.Muted.Render("No document details available"))
	default:
		v.renderContent(&b)
	}

	if v.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(v.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [c] copy path  [esc] back"))
	return b.String()
}

func (v *View) renderContent(b *strings.Builder) {
	lines := v.buildContent()
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(lines))

	for _, line := range lines[v.scrollOffset:end] {
		switch {
		case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
			b.WriteString(v.styles.Subtitle.Render(line))
		case strings.HasPrefix(line, "  "):
			b.WriteString(v.styles.Muted.Render(line))
		default:
			if label, value, ok := strings.Cut(line, ":"); ok {
				b.WriteString(v.styles.Subtitle.Render(label + ":"))
				b.WriteString(v.styles.Normal.Render(value))
			} else {
				b.WriteString(v.styles.Normal.Render(line))
			}
		}
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]", v.scrollOffset+1, end, len(lines))))
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Details returns the current document details.
func (v *View) Details() *driving.DocumentDetails {
	return v.details
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
