package driving

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// ConversionService converts documents on demand.
type ConversionService interface {
	// Convert renders the document named by ref. A ref is a content hash,
	// an indexed source path, or a path to a standalone file.
	Convert(ctx context.Context, ref string, format domain.Format) ([]byte, error)

	// ConvertIndexed is Convert limited to indexed documents: ref must be a
	// content hash or an indexed source path. Other paths are NotFound.
	ConvertIndexed(ctx context.Context, ref string, format domain.Format) ([]byte, error)

	// Submit starts an asynchronous conversion that writes to dest and
	// returns the pending job.
	Submit(ctx context.Context, ref string, format domain.Format, dest string) (*domain.ConversionJob, error)

	// Job returns a submitted job by ID.
	Job(id string) (*domain.ConversionJob, error)

	// Wait blocks until the job finishes or ctx is done.
	Wait(ctx context.Context, id string) (*domain.ConversionJob, error)
}
