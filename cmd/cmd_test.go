package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/belgian-batch-converter/internal/dom80"
)

// execute runs the CLI with a config path that does not exist, so every
// setting takes its default.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	readFormat, readExport, readOut, readSkipUnknown = "", "", "", false
	validateFormat = ""
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil))) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDOM80(t *testing.T, dir string, tamper bool) string {
	t.Helper()
	h := dom80.DefaultHeader(time.Date(2011, time.March, 1, 0, 0, 0, 0, time.UTC))
	h.BankCode = 123
	h.CreditorID = 12345678901
	h.Account = 1234567890
	h.Name = "SPORTCLUB"

	b := dom80.NewBatch(h)
	require.NoError(t, b.Append(dom80.Collection{Mandate: 11, Name: "JANSSENS", Amount: 2500, Communication: "LIDGELD"}))
	require.NoError(t, b.Append(dom80.Collection{Mandate: 12, Name: "PEETERS", Amount: 1750}))
	doc, err := b.Finalize()
	require.NoError(t, err)
	if tamper {
		doc.Trailer.Amount++
	}

	var buf bytes.Buffer
	_, err = dom80.Encode(&buf, doc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	path := filepath.Join(dir, "lidgeld.dom80")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	good := writeDOM80(t, t.TempDir(), false)
	out, err := execute(t, "validate", good, "--format", "dom80")
	require.NoError(t, err)
	assert.Contains(t, out, "2 transaction(s), trailer OK")

	bad := writeDOM80(t, t.TempDir(), true)
	out, err = execute(t, "validate", bad, "--format", "DOM80")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 trailer value(s) wrong")
	assert.Contains(t, out, "trailer 4251, computed 4250")
}

func TestReadCommandPrintsAndExports(t *testing.T) {
	dir := t.TempDir()
	path := writeDOM80(t, dir, true)
	xmlPath := filepath.Join(dir, "export.xml")

	out, err := execute(t, "read", path, "--format", "dom80", "--export", "xml", "--out", xmlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "DOM80 batch lidgeld.dom80")
	assert.Contains(t, out, "JANSSENS")
	assert.Contains(t, out, "Trailer problems:")
	assert.Contains(t, out, "Exported to "+xmlPath)

	data, err := os.ReadFile(xmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<validation status="mismatch">`)
}

func TestReadCommandErrors(t *testing.T) {
	path := writeDOM80(t, t.TempDir(), false)

	_, err := execute(t, "read", path, "--format", "sepa")
	assert.Error(t, err)

	_, err = execute(t, "read", path, "--format", "dom80", "--export", "pdf")
	assert.Error(t, err)

	_, err = execute(t, "read", filepath.Join(t.TempDir(), "missing.dom80"), "--format", "dom80")
	assert.Error(t, err)

	// a DOM80 file is not a valid BVB file
	_, err = execute(t, "validate", path, "--format", "bvb")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Belgian Batch Converter")
	assert.Contains(t, out, "DOM80, BVB")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
