package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-insights/internal/common"
	"github.com/joseph-ayodele/invoice-insights/internal/document"
	"github.com/joseph-ayodele/invoice-insights/internal/entity"
	"github.com/joseph-ayodele/invoice-insights/internal/export"
)

type batchResponse struct {
	BatchID     string               `json:"batch_id,omitempty"`
	Summary     entity.BatchSummary  `json:"summary"`
	MasterList  []entity.MasterItem  `json:"master_list"`
	Savings     entity.SavingsReport `json:"savings_analysis"`
	Downloads   map[string]string    `json:"downloads"`
	GeneratedAt time.Time            `json:"generated_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"model":     s.model,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	docs, err := s.readUploads(r, "file")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(docs) != 1 {
		s.writeError(w, fmt.Errorf("%w: exactly one file expected", common.ErrInvalidInput))
		return
	}
	doc := docs[0]
	if !doc.Supported() {
		s.writeError(w, fmt.Errorf("%w: %q", common.ErrUnsupportedType, doc.Ext()))
		return
	}

	result := s.processor.ProcessDocument(r.Context(), doc)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	docs, err := s.readUploads(r, "files")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(docs) == 0 {
		s.writeError(w, fmt.Errorf("%w: no files provided", common.ErrInvalidInput))
		return
	}

	summary := s.coordinator.ProcessBatch(r.Context(), docs)
	master := s.engine.BuildMasterList(summary.Results)
	savings := s.engine.ComputeSavingsAnalysis(summary.Results, s.topN)

	files, err := s.exporter.ExportAll(summary, master, savings)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := batchResponse{
		Summary:     summary,
		MasterList:  master,
		Savings:     savings,
		Downloads:   downloadLinks(files),
		GeneratedAt: time.Now().UTC(),
	}
	if s.store != nil {
		id, err := s.store.SaveBatch(summary, master, savings)
		if err != nil {
			// The batch itself succeeded; losing history is not fatal.
			s.logger.Error("server.history_save_failed", "error", err)
		} else {
			resp.BatchID = id
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"batches": []any{}})
		return
	}
	entries, err := s.store.ListBatches()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"batches": entries})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, fmt.Errorf("%w: history disabled", common.ErrNotFound))
		return
	}
	rec, err := s.store.GetBatch(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	csvFiles, jsonFiles, xlsxFiles, err := s.exporter.ListOutputs()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"csv_files":  emptyIfNil(csvFiles),
		"json_files": emptyIfNil(jsonFiles),
		"xlsx_files": emptyIfNil(xlsxFiles),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	path, err := s.exporter.ResolvePath(filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	switch filepath.Ext(filename) {
	case ".csv":
		w.Header().Set("Content-Type", "text/csv")
	case ".json":
		w.Header().Set("Content-Type", "application/json")
	case ".xlsx":
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// readUploads drains every part under the given field into memory. Upload
// size is bounded before parsing.
func (s *Server) readUploads(r *http.Request, field string) ([]document.Document, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: parse multipart form: %v", common.ErrInvalidInput, err)
	}
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("%w: multipart form required", common.ErrInvalidInput)
	}

	headers := r.MultipartForm.File[field]
	docs := make([]document.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readUpload(fh *multipart.FileHeader) (document.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return document.Document{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return document.Document{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return document.Document{Filename: filepath.Base(fh.Filename), Data: data}, nil
}

func downloadLinks(files export.Files) map[string]string {
	links := make(map[string]string)
	add := func(key, path string) {
		if path != "" {
			links[key] = "/api/download/" + filepath.Base(path)
		}
	}
	add("items_csv", files.ItemsCSV)
	add("summary_csv", files.SummaryCSV)
	add("results_json", files.ResultsJSON)
	add("master_list_xlsx", files.MasterXLSX)
	add("savings_xlsx", files.SavingsXLSX)
	return links
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("server.write_response_failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrUnsupportedType):
		status = http.StatusUnsupportedMediaType
	}
	s.logger.Error("server.request_failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
