package domain

import (
	"errors"
	"strings"
	"time"
)

// Format identifies a conversion target format.
type Format string

// Supported conversion formats.
const (
	// FormatMarkup is the structured-markup (XML) interchange format.
	FormatMarkup Format = "structured-markup"

	// FormatRecord is the record-oriented (JSON) interchange format.
	FormatRecord Format = "record"

	// FormatTabular is the tabular (CSV) interchange format.
	FormatTabular Format = "tabular"

	// FormatYAML is the record layout rendered as YAML.
	FormatYAML Format = "yaml"
)

// formatAliases maps user-facing names onto canonical formats.
var formatAliases = map[string]Format{
	"structured-markup": FormatMarkup,
	"markup":            FormatMarkup,
	"xml":               FormatMarkup,
	"record":            FormatRecord,
	"json":              FormatRecord,
	"tabular":           FormatTabular,
	"csv":               FormatTabular,
	"yaml":              FormatYAML,
	"yml":               FormatYAML,
}

// ParseFormat resolves a format name or alias. Unknown names fail with
// UnsupportedTargetFormat.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", NewError(KindUnsupportedTargetFormat, "unknown target format %q", name)
}

// String returns the canonical format name.
func (f Format) String() string {
	return string(f)
}

// AllFormats returns the canonical formats in display order.
func AllFormats() []Format {
	return []Format{FormatMarkup, FormatRecord, FormatTabular, FormatYAML}
}

// JobStatus is the lifecycle state of a ConversionJob.
type JobStatus string

// Conversion job states.
const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ConversionJob tracks an interactive conversion request. Jobs are
// transient and live only in memory.
type ConversionJob struct {
	// ID is the job identifier.
	ID string

	// Hash references the source document.
	Hash string

	// Format is the requested target format.
	Format Format

	// Status is the current lifecycle state.
	Status JobStatus

	// Location is the output file path once the job is done.
	Location string

	// Error describes the failure when Status is JobFailed.
	Error string

	// ErrorKind classifies the failure, when it was classified.
	ErrorKind ErrorKind

	// CreatedAt is when the job was submitted.
	CreatedAt time.Time

	// FinishedAt is when the job reached done or failed.
	FinishedAt time.Time
}

// Finished reports whether the job reached a terminal state.
func (j *ConversionJob) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}

// Err returns the failure of a failed job as an error, nil otherwise.
func (j *ConversionJob) Err() error {
	if j.Status != JobFailed {
		return nil
	}
	if j.ErrorKind == "" {
		return errors.New(j.Error)
	}
	return &Error{Kind: j.ErrorKind, Detail: strings.TrimPrefix(j.Error, string(j.ErrorKind)+": ")}
}
