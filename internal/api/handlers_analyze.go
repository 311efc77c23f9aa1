package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/docoutline/internal/collection"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleAnalyze queues a persona analysis. The multipart form carries the
// collection config as a "config" field or file and the documents as
// "files". Documents named in the config but not uploaded are reported as
// failures of the job; uploads the config does not name are ignored.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	raw, err := configField(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := collection.Parse(raw)
	if err != nil {
		jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
		return
	}

	uploads := make(map[string][]byte)
	for _, fh := range r.MultipartForm.File["files"] {
		filename := sanitizeFilename(fh.Filename)
		f, err := fh.Open()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to open %s", filename), http.StatusBadRequest)
			return
		}
		data, status, err := s.readUpload(f)
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("%s: %s", filename, err), status)
			return
		}
		uploads[filename] = data
	}

	inputs := make([]pipeline.Input, len(cfg.Documents))
	for i, d := range cfg.Documents {
		// A nil Data with no Path fails as not uploaded.
		inputs[i] = pipeline.Input{Filename: d.Filename, Data: uploads[d.Filename]}
	}

	name := cfg.ChallengeInfo.ChallengeID
	if name == "" {
		name = "upload"
	}
	job := pipeline.NewJob(name, string(cfg.Persona), string(cfg.Job), inputs)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/analyze/%s", job.ID),
	})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// configField returns the collection config from the "config" form value or
// file part.
func configField(r *http.Request) ([]byte, error) {
	if v := r.FormValue("config"); v != "" {
		return []byte(v), nil
	}
	f, _, err := r.FormFile("config")
	if err != nil {
		return nil, fmt.Errorf("config is required")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read config")
	}
	return data, nil
}
