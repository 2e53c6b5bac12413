package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocs = `{"id":"a","text":"alpha","tags":{"lang":"en"}}
{"id":"b","text":"beta","chunks":[{"id":"b0","parent_id":"b","text":"beta chunk"}]}
{"text":"gamma"}
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_BoltLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "docs.db")
	base := []string{"--path", db, "--collection", "books"}
	cmd := func(args ...string) []string { return append(append([]string{}, base...), args...) }

	out, err := run(t, sampleDocs, cmd("import")...)
	require.NoError(t, err)
	assert.Equal(t, "imported 3 documents\n", out)

	out, err = run(t, "", cmd("len")...)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = run(t, "", cmd("get", "0#text")...)
	require.NoError(t, err)
	assert.Equal(t, "\"alpha\"\n", out)

	out, err = run(t, "", cmd("get", "0:2#id")...)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, out)

	out, err = run(t, "", cmd("get", "@c#text")...)
	require.NoError(t, err)
	assert.JSONEq(t, `["beta chunk"]`, out)

	out, err = run(t, "", "--path", db, "ls")
	require.NoError(t, err)
	assert.Equal(t, "books\n", out)

	out, err = run(t, "", cmd("verify")...)
	require.NoError(t, err)
	assert.Contains(t, out, "table_len: 3")
	assert.Contains(t, out, "fingerprint: ")

	out, err = run(t, "", cmd("rm", "a,b")...)
	require.NoError(t, err)
	assert.Equal(t, "deleted 2 documents\n", out)

	out, err = run(t, "", cmd("export")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"text":"gamma"`)
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	dump := filepath.Join(dir, "dump.jsonl")

	_, err := run(t, sampleDocs, "--path", src, "import")
	require.NoError(t, err)
	_, err = run(t, "", "--path", src, "export", "--out", dump)
	require.NoError(t, err)
	_, err = run(t, "", "--path", dst, "import", "--in", dump)
	require.NoError(t, err)

	a, err := run(t, "", "--path", src, "get", "...")
	require.NoError(t, err)
	b, err := run(t, "", "--path", dst, "get", "...")
	require.NoError(t, err)
	assert.JSONEq(t, a, b)
}

func TestCLI_LocalConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCARRAY_TEST_ROOT", filepath.Join(dir, "blobs"))
	cfgPath := filepath.Join(dir, "docarray.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
backend: local
path: ${DOCARRAY_TEST_ROOT}
collection: notes
compression: zstd
cache_bytes: 1048576
`), 0o600))

	_, err := run(t, sampleDocs, "--config", cfgPath, "import")
	require.NoError(t, err)

	out, err := run(t, "", "--config", cfgPath, "ls")
	require.NoError(t, err)
	assert.Equal(t, "notes\n", out)

	out, err = run(t, "", "--config", cfgPath, "get", "b#tags__lang,text")
	require.NoError(t, err)
	assert.JSONEq(t, `[null,"beta"]`, out)

	out, err = run(t, "", "--config", cfgPath, "repair")
	require.NoError(t, err)
	assert.Equal(t, "offset2id is consistent\n", out)
}

func TestCLI_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "docs.db")

	_, err := run(t, "", "--backend", "redis", "len")
	assert.ErrorContains(t, err, "unknown backend")

	_, err = run(t, "", "--path", db, "get", "1:2:0")
	assert.Error(t, err)

	_, err = run(t, "", "--path", db, "get", "nope")
	assert.Error(t, err)

	_, err = run(t, "{not json", "--path", db, "import")
	assert.ErrorContains(t, err, "document 1")
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: minio\ncollection: x\n"), 0o600))
	_, err = loadConfig(path)
	assert.ErrorContains(t, err, "minio.endpoint")

	require.NoError(t, os.WriteFile(path, []byte("backend: s3\ns3:\n  bucket: b\n  commit_table: commits\nlog_level: debug\n"), 0o600))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "b", cfg.S3.Bucket)
	assert.Equal(t, "commits", cfg.S3.CommitTable)
	assert.Equal(t, "docarray", cfg.Collection)
	assert.Equal(t, "DEBUG", cfg.logLevel().String())
}
