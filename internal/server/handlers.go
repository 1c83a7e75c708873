package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/pipeline"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
)

const maxUploadBytes = 32 << 20

// uploadReceipt accepts a multipart file upload, spools it to a temp file and
// runs it through the pipeline.
func (s *Server) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.Join(common.ErrInvalidInput, fmt.Errorf("parse form: %w", err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.Join(common.ErrInvalidInput, errors.New("file field is required")))
		return
	}
	defer func() { _ = file.Close() }()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		writeError(w, errors.Join(common.ErrUnsupportedFile, fmt.Errorf("extension %q", ext)))
		return
	}

	tmp, err := os.CreateTemp("", "receipt-upload-*."+ext)
	if err != nil {
		writeError(w, fmt.Errorf("spool upload: %w", err))
		return
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		writeError(w, fmt.Errorf("spool upload: %w", err))
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, fmt.Errorf("spool upload: %w", err))
		return
	}

	res, err := s.svc.Process(r.Context(), pipeline.Upload{
		Path:           tmp.Name(),
		SourceFilename: header.Filename,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type uploadTextRequest struct {
	RawText        string `json:"raw_text"`
	SourceFilename string `json:"source_filename"`
}

// uploadText accepts pre-extracted OCR text and runs it through the pipeline.
func (s *Server) uploadText(w http.ResponseWriter, r *http.Request) {
	var req uploadTextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, errors.Join(common.ErrInvalidInput, err))
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		writeError(w, errors.Join(common.ErrInvalidInput, errors.New("raw_text is required")))
		return
	}
	if req.SourceFilename == "" {
		req.SourceFilename = "inline.txt"
	}

	res, err := s.svc.Process(r.Context(), pipeline.Upload{
		RawText:        req.RawText,
		SourceFilename: req.SourceFilename,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listReceipts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) receiptItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.Join(common.ErrInvalidInput, errors.New("id must be a UUID")))
		return
	}

	items, err := s.svc.LineItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) deleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.Join(common.ErrInvalidInput, errors.New("id must be a UUID")))
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

func (s *Server) clearReceipts(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Clear(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: n})
}

func (s *Server) exportReceipts(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportXLSX(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	filename := "receipts-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("http.export.write_failed", "error", err)
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := repository.HealthCheck(r.Context(), s.db, 2*time.Second); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
