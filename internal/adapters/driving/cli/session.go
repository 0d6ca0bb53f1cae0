package cli

import (
	"context"
	"errors"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// qrPNGSize is the edge length of PNG codes written by --png.
const qrPNGSize = 256

var (
	sessionPNG  string
	sessionJSON bool
	sessionHold bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage collaborative session tokens",
	Long: `Issue, validate and revoke time-limited session tokens.

Tokens live in the memory of the process that issued them. Use --hold to
keep a token alive from the command line, or issue tokens through the MCP
server started by 'docmirror serve'.`,
}

var sessionIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a session token",
	Args:  cobra.NoArgs,
	RunE:  runSessionIssue,
}

var sessionValidateCmd = &cobra.Command{
	Use:   "validate [token]",
	Short: "Check a session token",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionValidate,
}

var sessionRevokeCmd = &cobra.Command{
	Use:   "revoke [token]",
	Short: "Revoke a session token",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionRevoke,
}

func init() {
	sessionIssueCmd.Flags().StringVar(&sessionPNG, "png", "", "also write the QR code as a PNG file")
	sessionIssueCmd.Flags().BoolVar(&sessionJSON, "json", false, "output the grant as JSON")
	sessionIssueCmd.Flags().BoolVar(&sessionHold, "hold", false, "stay running until the token expires, then revoke it")

	sessionCmd.AddCommand(sessionIssueCmd)
	sessionCmd.AddCommand(sessionValidateCmd)
	sessionCmd.AddCommand(sessionRevokeCmd)
	rootCmd.AddCommand(sessionCmd)
}

func sessionContext(cmd *cobra.Command) (context.Context, error) {
	if sessionService == nil {
		return nil, errors.New("session service not configured")
	}
	if ctx := cmd.Context(); ctx != nil {
		return ctx, nil
	}
	return context.Background(), nil
}

func runSessionIssue(cmd *cobra.Command, _ []string) error {
	ctx, err := sessionContext(cmd)
	if err != nil {
		return err
	}

	grant, err := sessionService.Issue(ctx)
	if err != nil {
		return err
	}

	if sessionPNG != "" {
		if err := qrcode.WriteFile(grant.ConnectionString, qrcode.Medium, qrPNGSize, sessionPNG); err != nil {
			return err
		}
	}

	if sessionJSON {
		if err := writeJSON(cmd.OutOrStdout(), grant); err != nil {
			return err
		}
	} else {
		p := newPrinter(cmd.OutOrStdout())
		p.printf("%s %s\n", p.heading("Token:"), grant.Token)
		p.printf("%s %s\n", p.heading("Connect:"), p.path(grant.ConnectionString))
		p.printf("%s %s\n", p.heading("Expires:"), grant.ExpiresAt.Local().Format(time.RFC1123))
		// Block characters only render usefully on a terminal.
		if p.styled && grant.QRCode != "" {
			p.println()
			p.printf("%s", grant.QRCode)
		}
		if sessionPNG != "" {
			p.printf("QR code written to %s\n", sessionPNG)
		}
	}

	if !sessionHold {
		return nil
	}
	return holdSession(ctx, cmd, grant)
}

// holdSession keeps the issuing process alive until the token expires or
// the command is interrupted, revoking the token on interrupt.
func holdSession(ctx context.Context, cmd *cobra.Command, grant *domain.SessionGrant) error {
	timer := time.NewTimer(time.Until(grant.ExpiresAt))
	defer timer.Stop()

	select {
	case <-timer.C:
		cmd.Println("Session expired.")
		return nil
	case <-ctx.Done():
		if err := sessionService.Revoke(context.WithoutCancel(ctx), grant.Token); err != nil {
			return err
		}
		cmd.Println("Session revoked.")
		return nil
	}
}

func runSessionValidate(cmd *cobra.Command, args []string) error {
	ctx, err := sessionContext(cmd)
	if err != nil {
		return err
	}

	status, err := sessionService.Validate(ctx, args[0])
	if err != nil {
		return err
	}
	cmd.Println(string(status))
	return status.Err()
}

func runSessionRevoke(cmd *cobra.Command, args []string) error {
	ctx, err := sessionContext(cmd)
	if err != nil {
		return err
	}

	if err := sessionService.Revoke(ctx, args[0]); err != nil {
		return err
	}
	cmd.Println("Token revoked.")
	return nil
}
