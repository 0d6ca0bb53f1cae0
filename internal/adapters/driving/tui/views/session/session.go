// Package session provides the view that issues and shows a collaborative
// session token with its QR code.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// errNoSessionService is reported when sessions are not wired.
var errNoSessionService = errors.New("session service not available")

// View issues a token on entry and displays the grant.
type View struct {
	styles         *styles.Styles
	sessionService driving.SessionService
	ctx            context.Context
	now            func() time.Time

	grant   *domain.SessionGrant
	revoked bool
	issuing bool
	err     error
	width   int
	height  int
}

// NewView creates a new session view.
func NewView(s *styles.Styles, sessionService driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:         s,
		sessionService: sessionService,
		ctx:            context.Background(),
		now:            time.Now,
		width:          80,
		height:         24,
	}
}

// WithContext sets the context tokens are issued under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init issues a fresh token unless one is already showing.
func (v *View) Init() tea.Cmd {
	if v.grant != nil && !v.revoked && v.now().Before(v.grant.ExpiresAt) {
		return nil
	}
	return v.issue()
}

func (v *View) issue() tea.Cmd {
	v.issuing = true
	v.err = nil
	ctx, svc := v.ctx, v.sessionService
	return func() tea.Msg {
		if svc == nil {
			return messages.SessionIssued{Err: errNoSessionService}
		}
		grant, err := svc.Issue(ctx)
		return messages.SessionIssued{Grant: grant, Err: err}
	}
}

func (v *View) revoke() tea.Cmd {
	if v.grant == nil || v.revoked || v.sessionService == nil {
		return nil
	}
	ctx, svc, token := v.ctx, v.sessionService, v.grant.Token
	return func() tea.Msg {
		return messages.SessionRevoked{Token: token, Err: svc.Revoke(ctx, token)}
	}
}

// Update handles messages for the session view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SessionIssued:
		v.issuing = false
		v.err = msg.Err
		if msg.Err == nil {
			v.grant = msg.Grant
			v.revoked = false
		}

	case messages.SessionRevoked:
		v.err = msg.Err
		if msg.Err == nil && v.grant != nil && v.grant.Token == msg.Token {
			v.revoked = true
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			return v, v.issue()
		case "r":
			return v, v.revoke()
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the grant.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Share Session"))
	b.WriteString("\n\n")

	switch {
	case v.issuing:
		b.WriteString(v.styles.Muted.Render("Issuing token..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.grant == nil:
		b.WriteString(v.styles.Muted.Render("No session issued."))
	default:
		v.renderGrant(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[n] new token  [r] revoke  [esc] back"))
	return b.String()
}

func (v *View) renderGrant(b *strings.Builder) {
	g := v.grant
	b.WriteString(v.styles.Subtitle.Render("Token:   "))
	b.WriteString(g.Token)
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Connect: "))
	b.WriteString(v.styles.Path.Render(g.ConnectionString))
	b.WriteString("\n")

	switch {
	case v.revoked:
		b.WriteString(v.styles.Warning.Render("Revoked"))
	case !v.now().Before(g.ExpiresAt):
		b.WriteString(v.styles.Warning.Render("Expired at " + g.ExpiresAt.Local().Format(time.Kitchen)))
	default:
		remaining := g.ExpiresAt.Sub(v.now()).Round(time.Second)
		b.WriteString(v.styles.Success.Render("Expires in " + remaining.String()))
	}
	b.WriteString("\n")

	// The block-character code needs roughly its own width in columns.
	if g.QRCode != "" && !v.revoked && qrFits(g.QRCode, v.width, v.height) {
		b.WriteString("\n")
		b.WriteString(g.QRCode)
	}
}

func qrFits(qr string, width, height int) bool {
	lines := strings.Split(strings.TrimRight(qr, "\n"), "\n")
	if len(lines)+8 > height {
		return false
	}
	for _, l := range lines {
		if len([]rune(l)) > width {
			return false
		}
	}
	return true
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Grant returns the grant on display.
func (v *View) Grant() *domain.SessionGrant {
	return v.grant
}

// Revoked reports whether the displayed token was revoked.
func (v *View) Revoked() bool {
	return v.revoked
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
