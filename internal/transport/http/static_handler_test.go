package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwmonitor/internal/logger"
)

func webRoot(t *testing.T) (string, string) {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "web")
	files := map[string]string{
		filepath.Join(root, "index.html"):         "<html>sensors</html>",
		filepath.Join(root, "assets", "app.js"):   "console.log(1)",
		filepath.Join(root, "assets", "app.css"):  "body{}",
		filepath.Join(root, "assets", "logo.PNG"): "\x89PNG",
		filepath.Join(root, "notes.txt"):          "plain",
		filepath.Join(base, "secret.txt"):         "top secret",
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root, base
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	root, _ := webRoot(t)
	h := NewStaticHandler(root, logger.Discard())

	rec := serve(h.Index, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html>sensors</html>", rec.Body.String())

	missing := NewStaticHandler(t.TempDir(), logger.Discard())
	assert.Equal(t, http.StatusNotFound, serve(missing.Index, "/").Code)
}

func TestFileContentTypes(t *testing.T) {
	root, _ := webRoot(t)
	h := NewStaticHandler(root, logger.Discard())

	tests := []struct {
		path string
		want string
	}{
		{"/assets/app.js", "application/javascript"},
		{"/assets/app.css", "text/css"},
		{"/assets/logo.PNG", "image/png"},
		{"/index.html", "text/html"},
		{"/notes.txt", "text/plain"},
	}
	for _, tt := range tests {
		rec := serve(h.File, tt.path)
		assert.Equal(t, http.StatusOK, rec.Code, tt.path)
		assert.Equal(t, tt.want, rec.Header().Get("Content-Type"), tt.path)
	}

	assert.Equal(t, "console.log(1)", serve(h.File, "/assets/app.js").Body.String())
}

func TestFileRejectsEscapes(t *testing.T) {
	root, base := webRoot(t)
	h := NewStaticHandler(root, logger.Discard())

	require.NoError(t, os.Symlink(filepath.Join(base, "secret.txt"), filepath.Join(root, "link.txt")))

	for _, target := range []string{
		"/../secret.txt",
		"/%2e%2e/secret.txt",
		"/assets/../../secret.txt",
		"//" + filepath.ToSlash(filepath.Join(base, "secret.txt")),
		"/link.txt",
		"/missing.js",
		"/assets",
		"/assets/app.js/extra",
	} {
		rec := serve(h.File, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "top secret", target)
	}
}

func TestFileAllowsSymlinkInsideRoot(t *testing.T) {
	root, _ := webRoot(t)
	h := NewStaticHandler(root, logger.Discard())

	require.NoError(t, os.Symlink(filepath.Join(root, "assets", "app.js"), filepath.Join(root, "alias.js")))

	rec := serve(h.File, "/alias.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
}

func TestFilePermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	root, _ := webRoot(t)
	h := NewStaticHandler(root, logger.Discard())

	locked := filepath.Join(root, "locked.json")
	require.NoError(t, os.WriteFile(locked, []byte("{}"), 0o000))

	assert.Equal(t, http.StatusForbidden, serve(h.File, "/locked.json").Code)
}
