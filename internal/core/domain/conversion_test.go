package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"structured-markup", FormatMarkup},
		{"xml", FormatMarkup},
		{"record", FormatRecord},
		{"JSON", FormatRecord},
		{"tabular", FormatTabular},
		{"csv", FormatTabular},
		{"yml", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestParseFormat_Unsupported(t *testing.T) {
	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedTargetFormat)
	assert.Contains(t, err.Error(), "docx")
}

func TestConversionJob_Finished(t *testing.T) {
	job := &ConversionJob{Status: JobPending}
	assert.False(t, job.Finished())
	job.Status = JobRunning
	assert.False(t, job.Finished())
	job.Status = JobDone
	assert.True(t, job.Finished())
	job.Status = JobFailed
	assert.True(t, job.Finished())
}

func TestConversionJob_Err(t *testing.T) {
	job := &ConversionJob{Status: JobDone}
	assert.NoError(t, job.Err())

	job = &ConversionJob{Status: JobFailed, Error: "disk full"}
	assert.EqualError(t, job.Err(), "disk full")

	job = &ConversionJob{Status: JobFailed, Error: "NotFound: no document", ErrorKind: KindNotFound}
	err := job.Err()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "NotFound: no document", err.Error())
}
