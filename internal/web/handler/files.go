package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// indexPages are tried in order when a directory is requested.
var indexPages = []string{"index.html", "index.htm"}

// Handler serves files from a read-only content tree.
type Handler struct {
	fsys  http.FileSystem
	files http.Handler
}

// New creates a Handler over fsys. Path cleaning and containment within the
// root are left to http.FileServer and the http.FileSystem implementation.
func New(fsys http.FileSystem) *Handler {
	cfs := contentFS{fsys}
	return &Handler{
		fsys:  cfs,
		files: http.FileServer(cfs),
	}
}

// Files serves GET and HEAD requests: regular files with a detected content
// type, index.html or index.htm or a generated listing for directories, 404
// when nothing matches.
func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/") && h.serveIndex(w, r) {
		return
	}
	h.files.ServeHTTP(w, r)
}

// Unsupported answers every method without a handler.
func (h *Handler) Unsupported(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Unsupported method", http.StatusNotImplemented)
}

// serveIndex handles the directory index cases http.FileServer gets wrong:
// an index.html that exists but cannot be opened (FileServer falls back to a
// listing) and index.htm (FileServer ignores it). It reports whether it wrote
// a response.
func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) bool {
	dir := path.Clean(r.URL.Path)
	for _, name := range indexPages {
		f, err := h.fsys.Open(path.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
			return true
		}

		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
			return true
		}
		if info.IsDir() {
			_ = f.Close()
			continue
		}
		if name == "index.html" {
			// Readable; FileServer serves it itself.
			_ = f.Close()
			return false
		}

		http.ServeContent(w, r, name, info.ModTime(), f)
		_ = f.Close()
		return true
	}
	return false
}

// contentFS makes open failures other than not-found surface as 500.
// http.FileServer would otherwise answer permission errors with 403.
type contentFS struct {
	http.FileSystem
}

func (c contentFS) Open(name string) (http.File, error) {
	f, err := c.FileSystem.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	slog.Debug("open content file", "path", name, "err", err)
	return nil, &openError{name: name, err: err}
}

// openError must not unwrap: FileServer maps fs.ErrPermission to 403.
type openError struct {
	name string
	err  error
}

func (e *openError) Error() string {
	return "open " + e.name + ": " + e.err.Error()
}
