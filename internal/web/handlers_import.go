package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

// multipartOverhead is the room left for form fields around the file.
const multipartOverhead = 1 << 20

// handleImport validates an uploaded CSV and returns the new import session.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, r, fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, maxSize))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	sess, err := s.service.PreviewImport(ctx, kind, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(ctx).Info("import previewed",
		"import_id", sess.ID,
		"kind", kind,
		"bytes", header.Size,
	)

	if isHTMX(r) {
		s.renderSummary(w, r, http.StatusCreated, sess)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.GetImport(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleImportSummary renders the HTML summary partial of an import.
func (s *Server) handleImportSummary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.GetImport(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderSummary(w, r, http.StatusOK, sess)
}

// ToggleResponse reports a conflict selection change.
type ToggleResponse struct {
	ConflictID string   `json:"conflict_id"`
	Selected   bool     `json:"selected"`
	Selection  []string `json:"selection"`
	CanProceed bool     `json:"can_proceed"`
}

func (s *Server) handleToggleConflict(w http.ResponseWriter, r *http.Request) {
	conflictID := chi.URLParam(r, "conflictID")
	sess, selected, err := s.service.ToggleConflict(r.Context(), chi.URLParam(r, "importID"), conflictID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.renderSummary(w, r, http.StatusOK, sess)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{
		ConflictID: conflictID,
		Selected:   selected,
		Selection:  sess.Selected,
		CanProceed: core.CanProceed(&sess.Result, core.Selection(sess.Selected)) == nil,
	})
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ProceedImport(ctx, chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

func (s *Server) renderSummary(w http.ResponseWriter, r *http.Request, status int, sess *core.ImportSession) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ImportSummary(sess).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render import summary", "import_id", sess.ID, "error", err)
	}
}
