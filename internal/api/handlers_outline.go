package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/output"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	gocache "github.com/patrickmn/go-cache"
)

// handleOutline extracts the outline of one uploaded document. Results are
// cached by filename and content hash, since the filename can decide the
// title. An unreadable document still gets a 200 with an empty outline.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, status, err := s.readUpload(file)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	key := filename + ":" + pipeline.ContentHashHex(data)
	if cached, ok := s.outlines.Get(key); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	o, err := s.orchestrator.Processor().Outline(pipeline.Input{Filename: filename, Data: data})
	if err != nil {
		if !errors.Is(err, parser.ErrUnreadable) {
			s.log.Error("outline failed", "doc", filename, "error", err)
			jsonError(w, "outline failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.log.Warn("document unreadable, returning empty outline", "doc", filename, "error", err)
	}

	res := output.FromOutline(o)
	s.outlines.Set(key, res, gocache.DefaultExpiration)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, res)
}

// readUpload reads one uploaded file, enforcing the size limit.
func (s *Server) readUpload(f multipart.File) ([]byte, int, error) {
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := output.Marshal(v)
	if err != nil {
		jsonError(w, "encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
