// Package tesseract provides an OCR service that shells out to the
// tesseract command-line tool.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var _ driven.OCRService = (*Service)(nil)

// Binary is the executable looked up on PATH.
const Binary = "tesseract"

// CommandRunner runs an external command with stdin and returns stdout.
type CommandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name, feeding stdin and capturing stdout. Stderr is folded
// into the error.
func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// supported lists the image types tesseract reads from stdin.
var supported = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/tiff": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

// Service recognises text with tesseract.
type Service struct {
	runner   CommandRunner
	language string
}

// Option configures a Service.
type Option func(*Service)

// WithRunner replaces the command runner, typically with a test double.
func WithRunner(r CommandRunner) Option {
	return func(s *Service) { s.runner = r }
}

// New creates a tesseract OCR service for the given language pack.
func New(language string, opts ...Option) *Service {
	if language == "" {
		language = "eng"
	}
	s := &Service{runner: ExecRunner{}, language: language}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether the tesseract binary is on PATH.
func Available() bool {
	_, err := exec.LookPath(Binary)
	return err == nil
}

// Recognize returns the text tesseract finds in the request image.
func (s *Service) Recognize(ctx context.Context, req driven.CapabilityRequest) (string, error) {
	if len(req.Content) == 0 {
		return "", domain.NewError(domain.KindInvalidInput, "tesseract: empty image")
	}
	if req.MIMEType != "" && !supported[req.MIMEType] {
		return "", domain.NewError(domain.KindUnsupportedFormat, "tesseract: cannot read %s", req.MIMEType)
	}

	out, err := s.runner.Run(ctx, req.Content, Binary, "stdin", "stdout", "-l", s.language)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.WrapError(domain.KindExtractionTimeout, err, "tesseract")
		}
		return "", domain.WrapError(domain.KindCorruptInput, err, "tesseract")
	}
	return strings.TrimSpace(string(out)), nil
}

// Name identifies the OCR engine.
func (s *Service) Name() string {
	return Binary + ":" + s.language
}
