package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// jobRetention is how long a finished job nobody waited for stays
// queryable.
const jobRetention = time.Hour

// Ensure ConversionService implements the interface.
var _ driving.ConversionService = (*ConversionService)(nil)

// ConversionService renders documents on demand. It reads through the
// document store and never takes index or sync locks.
type ConversionService struct {
	documents driving.DocumentService
	walker    driven.Walker
	registry  driven.NormaliserRegistry
	converter driven.Converter
	openTree  driven.OutputTreeOpener
	maxSize   int64
	now       func() time.Time

	mu   sync.Mutex
	jobs map[string]*conversionJob
}

type conversionJob struct {
	job  domain.ConversionJob
	done chan struct{}
}

// NewConversionService creates a conversion service. maxSize bounds
// standalone files (0 = unlimited).
func NewConversionService(
	documents driving.DocumentService,
	walker driven.Walker,
	registry driven.NormaliserRegistry,
	converter driven.Converter,
	openTree driven.OutputTreeOpener,
	maxSize int64,
) *ConversionService {
	return &ConversionService{
		documents: documents,
		walker:    walker,
		registry:  registry,
		converter: converter,
		openTree:  openTree,
		maxSize:   maxSize,
		now:       time.Now,
		jobs:      make(map[string]*conversionJob),
	}
}

// Convert renders the document named by ref into format.
func (s *ConversionService) Convert(ctx context.Context, ref string, format domain.Format) ([]byte, error) {
	return s.convert(ctx, ref, format, true)
}

// ConvertIndexed renders an indexed document and never reads files the
// index does not know.
func (s *ConversionService) ConvertIndexed(ctx context.Context, ref string, format domain.Format) ([]byte, error) {
	return s.convert(ctx, ref, format, false)
}

func (s *ConversionService) convert(ctx context.Context, ref string, format domain.Format, standalone bool) ([]byte, error) {
	format, err := domain.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	doc, err := s.resolve(ctx, ref, standalone)
	if err != nil {
		return nil, err
	}
	return s.converter.Convert(doc, format)
}

// resolve finds a stored document for ref. With standalone set it falls
// back to normalising ref as a file outside the index.
func (s *ConversionService) resolve(ctx context.Context, ref string, standalone bool) (*domain.NormalizedDocument, error) {
	details, err := s.documents.Resolve(ctx, ref)
	if err == nil {
		return details.Document, nil
	}
	if !standalone || !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	f, statErr := s.walker.Stat(ref)
	if statErr != nil {
		if errors.Is(statErr, domain.ErrNotFound) {
			return nil, err
		}
		return nil, statErr
	}
	content, err := s.walker.Read(ctx, f, s.maxSize)
	if err != nil {
		return nil, err
	}
	logger.Debug("convert standalone file %s", f.AbsPath)
	return s.registry.Normalise(ctx, &domain.RawDocument{
		URI:          f.Path,
		DeclaredMIME: f.DeclaredMIME,
		Content:      content,
		Hash:         hashContent(content),
	})
}

// Submit starts an asynchronous conversion of ref into dest. When dest has
// no extension the format's extension is appended.
func (s *ConversionService) Submit(
	ctx context.Context, ref string, format domain.Format, dest string,
) (*domain.ConversionJob, error) {
	format, err := domain.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dest) == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "destination is required")
	}

	j := &conversionJob{
		job: domain.ConversionJob{
			ID:        uuid.NewString(),
			Format:    format,
			Status:    domain.JobPending,
			CreatedAt: s.now().UTC(),
		},
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.pruneLocked()
	s.jobs[j.job.ID] = j
	snapshot := j.job
	s.mu.Unlock()

	// The job outlives the submitting request.
	go s.run(context.WithoutCancel(ctx), j, ref, dest)
	return &snapshot, nil
}

func (s *ConversionService) run(ctx context.Context, j *conversionJob, ref, dest string) {
	defer close(j.done)
	s.update(j, func(job *domain.ConversionJob) { job.Status = domain.JobRunning })

	location, hash, err := s.convertTo(ctx, ref, j.job.Format, dest)
	s.update(j, func(job *domain.ConversionJob) {
		job.FinishedAt = s.now().UTC()
		job.Hash = hash
		if err != nil {
			job.Status = domain.JobFailed
			job.Error = err.Error()
			job.ErrorKind = domain.KindOf(err)
			return
		}
		job.Status = domain.JobDone
		job.Location = location
	})
	if err != nil {
		logger.Warn("conversion %s failed: %v", j.job.ID, err)
	}
}

func (s *ConversionService) convertTo(ctx context.Context, ref string, format domain.Format, dest string) (string, string, error) {
	doc, err := s.resolve(ctx, ref, true)
	if err != nil {
		return "", "", err
	}
	data, err := s.converter.Convert(doc, format)
	if err != nil {
		return "", doc.Hash, err
	}

	ext := strings.TrimPrefix(filepath.Ext(dest), ".")
	base := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))
	if ext == "" {
		if ext, err = s.converter.Extension(format); err != nil {
			return "", doc.Hash, err
		}
		base = filepath.Base(dest)
	}
	tree, err := s.openTree(filepath.Dir(dest))
	if err != nil {
		return "", doc.Hash, err
	}
	location, err := tree.Write(base, ext, data)
	if err != nil {
		return "", doc.Hash, fmt.Errorf("write %s: %w", dest, err)
	}
	return location, doc.Hash, nil
}

func (s *ConversionService) update(j *conversionJob, fn func(*domain.ConversionJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&j.job)
}

// Job returns a copy of a submitted job.
func (s *ConversionService) Job(id string) (*domain.ConversionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "no conversion job %q", id)
	}
	out := j.job
	return &out, nil
}

// Wait blocks until the job finishes or ctx is done. A finished job is
// handed over and forgotten.
func (s *ConversionService) Wait(ctx context.Context, id string) (*domain.ConversionJob, error) {
	s.mu.Lock()
	j, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "no conversion job %q", id)
	}

	select {
	case <-j.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, id)
		out := j.job
		return &out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pruneLocked drops finished jobs older than jobRetention. s.mu must be held.
func (s *ConversionService) pruneLocked() {
	cutoff := s.now().Add(-jobRetention)
	for id, j := range s.jobs {
		if j.job.Finished() && j.job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
