package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestConvertCmd_FormatRequired(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", "a.txt"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "format" not set`)
}

func TestConvertCmd_ToStdout(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.conversion.data = []byte("<document/>\n")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"convert", "a.txt", "-f", "xml"})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "<document/>\n", buf.String())
}

func TestConvertCmd_UnsupportedTarget(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", "a.txt", "--format", "docx"})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, domain.ErrUnsupportedTargetFormat)
	assert.Equal(t, `UnsupportedTargetFormat: unknown target format "docx"`, errorLine(err))
}

func TestConvertCmd_ToFile(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.conversion.job = &domain.ConversionJob{ID: "job-1", Status: domain.JobDone, Location: "/tmp/a.yaml"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"convert", "a.txt", "-f", "yaml", "-o", "/tmp/a"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Wrote /tmp/a.yaml")
}

func TestConvertCmd_JobFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.conversion.job = &domain.ConversionJob{ID: "job-1", Status: domain.JobFailed,
		Error: "UnsupportedFormat: no normaliser for a.bin", ErrorKind: domain.KindUnsupportedFormat}

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", "a.bin", "-f", "json", "-o", "/tmp/a.json"})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Equal(t, "UnsupportedFormat: no normaliser for a.bin", errorLine(err))
}
