package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadFileTool(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "one\ntwo\nthree")
	read := NewReadFileTool(WithBasePath(dir))
	ctx := context.Background()

	t.Run("whole file", func(t *testing.T) {
		out, err := read.Execute(ctx, map[string]any{"path": "notes.txt"}, CallOptions{})
		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\nthree", out)
	})

	t.Run("line range", func(t *testing.T) {
		out, err := read.Execute(ctx, map[string]any{"path": "notes.txt", "start_line": 2, "end_line": 3}, CallOptions{})
		require.NoError(t, err)
		assert.Equal(t, "two\nthree", out)
	})

	t.Run("base64", func(t *testing.T) {
		out, err := read.Execute(ctx, map[string]any{"path": "notes.txt", "encoding": "base64"}, CallOptions{})
		require.NoError(t, err)
		assert.Equal(t, "b25lCnR3bwp0aHJlZQ==", out)
	})

	t.Run("outside base path", func(t *testing.T) {
		_, err := read.Execute(ctx, map[string]any{"path": "../../etc/passwd"}, CallOptions{})
		assert.Error(t, err)
	})

	t.Run("extension filter", func(t *testing.T) {
		restricted := NewReadFileTool(WithBasePath(dir), WithAllowedExtensions(".md"))
		_, err := restricted.Execute(ctx, map[string]any{"path": "notes.txt"}, CallOptions{})
		assert.ErrorContains(t, err, "not allowed")
	})
}

func TestWriteFileTool(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("requires editable approval by default", func(t *testing.T) {
		write := NewWriteFileTool(WithBasePath(dir))
		require.NotNil(t, write.NeedsApproval)
		assert.True(t, write.InputEditable)
	})

	t.Run("writes and appends", func(t *testing.T) {
		write := NewWriteFileTool(WithBasePath(dir), WithUnapprovedWrites())
		assert.Nil(t, write.NeedsApproval)

		out, err := write.Execute(ctx, map[string]any{"path": "sub/out.txt", "content": "hello"}, CallOptions{})
		require.NoError(t, err)
		assert.Equal(t, WriteFileResult{Path: filepath.Join(dir, "sub/out.txt"), BytesWritten: 5, Mode: "overwrite"}, out)

		_, err = write.Execute(ctx, map[string]any{"path": "sub/out.txt", "content": " world", "mode": "append"}, CallOptions{})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "sub/out.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})
}

func TestListDirTool(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "a")
	writeTestFile(t, dir, "sub/b.txt", "bb")
	list := NewListDirTool(WithBasePath(dir))
	ctx := context.Background()

	out, err := list.Execute(ctx, map[string]any{"path": "."}, CallOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []DirEntry{{Name: "a.txt", Size: 1}, {Name: "sub", IsDir: true}}, out)

	out, err = list.Execute(ctx, map[string]any{"path": ".", "recursive": true}, CallOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, DirEntry{Name: "sub/b.txt", Size: 2})
}

func TestHTTPTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.Method + " ok"))
	}))
	defer srv.Close()
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		h := NewHTTPTool()
		out, err := h.Execute(ctx, map[string]any{"url": srv.URL}, CallOptions{})
		require.NoError(t, err)
		res := out.(HTTPResult)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "GET ok", res.Body)
		assert.Equal(t, "text/plain", res.Headers["Content-Type"])
	})

	t.Run("mutating methods need approval", func(t *testing.T) {
		h := NewHTTPTool()
		needs, err := h.NeedsApproval(ctx, map[string]any{"url": srv.URL, "method": "POST"}, CallOptions{})
		require.NoError(t, err)
		assert.True(t, needs)

		needs, err = h.NeedsApproval(ctx, map[string]any{"url": srv.URL}, CallOptions{})
		require.NoError(t, err)
		assert.False(t, needs)
	})

	t.Run("blocked host", func(t *testing.T) {
		h := NewHTTPTool(WithBlockedHosts("127.0.0.1"))
		_, err := h.Execute(ctx, map[string]any{"url": srv.URL}, CallOptions{})
		assert.ErrorContains(t, err, "blocked")
	})

	t.Run("allowed hosts", func(t *testing.T) {
		h := NewHTTPTool(WithAllowedHosts("example.com"))
		_, err := h.Execute(ctx, map[string]any{"url": srv.URL}, CallOptions{})
		assert.ErrorContains(t, err, "not in allowed list")
	})
}

func TestSearchTool(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "main.go", "package main\nfunc main() {}\n")
	writeTestFile(t, dir, "pkg/util.go", "package pkg\nfunc Helper() {}\n")
	writeTestFile(t, dir, "README.md", "mentions func here\n")
	ctx := context.Background()

	collect := func(t *testing.T, tl Tool, input map[string]any) []SearchResult {
		t.Helper()
		var results []SearchResult
		for out, err := range tl.Stream(ctx, input, CallOptions{}) {
			require.NoError(t, err)
			results = append(results, out.(SearchResult))
		}
		return results
	}

	t.Run("streams preliminary results then a final one", func(t *testing.T) {
		results := collect(t, NewSearchTool(WithSearchPath(dir)), map[string]any{"pattern": "^func"})
		require.NotEmpty(t, results)
		final := results[len(results)-1]
		assert.True(t, final.Done)
		assert.Equal(t, 2, final.Count)
		for _, r := range results[:len(results)-1] {
			assert.False(t, r.Done)
		}
	})

	t.Run("file pattern uses doublestar", func(t *testing.T) {
		results := collect(t, NewSearchTool(WithSearchPath(dir)), map[string]any{"pattern": "func", "file_pattern": "**/*.go"})
		final := results[len(results)-1]
		assert.Equal(t, 2, final.Count)
	})

	t.Run("exclude patterns", func(t *testing.T) {
		results := collect(t, NewSearchTool(WithSearchPath(dir), WithExcludePatterns("pkg/**")), map[string]any{"pattern": "func"})
		final := results[len(results)-1]
		assert.Equal(t, 2, final.Count)
	})

	t.Run("max results truncates", func(t *testing.T) {
		results := collect(t, NewSearchTool(WithSearchPath(dir), WithMaxResults(1)), map[string]any{"pattern": "func"})
		final := results[len(results)-1]
		assert.Equal(t, 1, final.Count)
		assert.True(t, final.Truncated)
	})

	t.Run("invalid regex", func(t *testing.T) {
		tl := NewSearchTool(WithSearchPath(dir))
		for _, err := range tl.Stream(ctx, map[string]any{"pattern": "("}, CallOptions{}) {
			assert.Error(t, err)
		}
	})
}
