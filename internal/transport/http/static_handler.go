package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"hwmonitor/internal/logger"
)

var contentTypes = map[string]string{
	".js":   "application/javascript",
	".css":  "text/css",
	".html": "text/html",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

var errOutsideRoot = errors.New("path escapes web root")

// StaticHandler serves files below root. Traversal attempts get the same
// 404 as missing files.
type StaticHandler struct {
	root string
	log  logger.Logger
}

func NewStaticHandler(root string, log logger.Logger) *StaticHandler {
	return &StaticHandler{root: root, log: log}
}

func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	body, err := h.read("index.html")
	if err != nil {
		h.log.Debug("http: index not served", "error", err)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write(body)
}

func (h *StaticHandler) File(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")

	body, err := h.read(rel)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			h.log.Warn("http: static read denied", "path", rel, "error", err)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, errOutsideRoot) {
			h.log.Debug("http: static file not served", "path", rel, "error", err)
		}
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType(rel))
	w.Write(body)
}

func (h *StaticHandler) read(rel string) ([]byte, error) {
	path, err := h.resolve(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}

	return os.ReadFile(path)
}

// resolve maps a request path to a file inside root, following symlinks
// before the containment check.
func (h *StaticHandler) resolve(rel string) (string, error) {
	if rel == "" || strings.Contains(rel, "..") || strings.HasPrefix(rel, "/") ||
		strings.HasPrefix(rel, `\`) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", errOutsideRoot
	}

	root, err := filepath.Abs(h.root)
	if err != nil {
		return "", err
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}

	path, err := filepath.EvalSymlinks(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}

	inside, err := filepath.Rel(root, path)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}

	return path, nil
}

func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "text/plain"
}
