package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/jobparse/internal/parser"
	"github.com/dgallion1/jobparse/internal/pipeline"
)

// maxBatchFiles caps how many files one batch request may queue.
const maxBatchFiles = 10

// ingestResult is one entry in an ingest response.
type ingestResult struct {
	Filename string             `json:"filename"`
	JobID    string             `json:"job_id,omitempty"`
	Status   pipeline.JobStatus `json:"status,omitempty"`
	Platform string             `json:"platform,omitempty"`
	PollURL  string             `json:"poll_url,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}

	res, code := s.submitFile(fhs[0], r.FormValue("source"))
	if res.Error != "" {
		jsonError(w, res.Error, code)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleBatchIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxBatchFiles+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, fmt.Sprintf("at most %d files per batch", maxBatchFiles), http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	results := make([]ingestResult, 0, len(files))
	for _, fh := range files {
		res, _ := s.submitFile(fh, source)
		results = append(results, res)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// submitFile validates one upload and queues it. The status code is only
// meaningful when the result carries an error.
func (s *Server) submitFile(fh *multipart.FileHeader, source string) (ingestResult, int) {
	filename := sanitizeFilename(fh.Filename)
	res := ingestResult{Filename: filename}

	if !parser.IsSupportedExtension(filename) {
		res.Error = fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))
		return res, http.StatusBadRequest
	}

	f, err := fh.Open()
	if err != nil {
		res.Error = "failed to open file"
		return res, http.StatusInternalServerError
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	f.Close()
	if err != nil {
		res.Error = "failed to read file"
		return res, http.StatusInternalServerError
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		res.Error = fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		return res, http.StatusRequestEntityTooLarge
	}

	job := pipeline.NewJob(filename, strings.TrimSpace(source), data)
	if err := s.orchestrator.Submit(job); err != nil {
		res.Error = err.Error()
		return res, http.StatusServiceUnavailable
	}

	res.JobID = job.ID
	res.Status = pipeline.StatusQueued
	res.Platform = job.Platform
	res.PollURL = fmt.Sprintf("/api/ingest/%s/status", job.ID)
	return res, http.StatusAccepted
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send full paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
