package consoleapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/ingest"
	"github.com/phillip-england/leavedesk/internal/listing"
	"github.com/phillip-england/leavedesk/internal/notice"
)

func (s *Server) importPage(w http.ResponseWriter, r *http.Request) {
	s.renderImport(w, workspaceFrom(r.Context()), http.StatusOK)
}

func (s *Server) renderImport(w http.ResponseWriter, ws *workspace, status int) {
	data := pageData{Title: "Import leave requests", Active: "import", Columns: ingest.TemplateColumns()}
	if p := ws.pendingImport(); p != nil {
		data.Preview = p.preview
		data.HasPending = true
	}
	s.render(w, ws, "import", status, data)
}

// previewImport parses the chosen file locally and holds it until the user
// submits or cancels. Nothing is sent to the API here.
func (s *Server) previewImport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	upload, err := s.readUpload(w, r)
	if err != nil {
		ws.notices.Notify(notice.Notice{Code: notice.CodeInvalidInput, Severity: notice.SeverityError, Message: err.Error()})
		s.renderImport(w, ws, http.StatusBadRequest)
		return
	}

	preview, err := ingest.Parse(upload.FileName, upload.Data)
	if err != nil {
		s.log.Info("parse upload", zap.String("file", upload.FileName), zap.Error(err))
		ws.setPendingImport(nil)
		ws.notices.Notify(notice.Notice{
			Code:     notice.CodeInvalidInput,
			Severity: notice.SeverityError,
			Message:  "The file could not be read as a spreadsheet.",
		})
		s.renderImport(w, ws, http.StatusUnprocessableEntity)
		return
	}
	ws.setPendingImport(&pendingImport{upload: upload, preview: preview})
	s.renderImport(w, ws, http.StatusOK)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (ingest.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ingest.Upload{}, fmt.Errorf("the file is larger than %d MB", s.cfg.MaxUploadBytes>>20)
		}
		return ingest.Upload{}, errors.New("select a spreadsheet to upload")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return ingest.Upload{}, errors.New("select a spreadsheet to upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ingest.Upload{}, errors.New("the upload could not be read")
	}
	return ingest.Upload{FileName: filepath.Base(header.Filename), Data: data}, nil
}

// submitImport sends the held file as it was uploaded. The preview stays
// on screen after a successful import.
func (s *Server) submitImport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	pending := ws.pendingImport()
	if pending == nil {
		ws.notices.Notify(notice.Notice{Code: notice.CodeInvalidInput, Severity: notice.SeverityWarning, Message: "Select a file before importing."})
		s.renderImport(w, ws, http.StatusBadRequest)
		return
	}

	err := ws.mutator.Do(r.Context(), listing.ActionImport, func(ctx context.Context) error {
		return ws.importer.Submit(ctx, pending.upload)
	})
	if s.expired(w, r, ws, err) {
		return
	}
	s.renderImport(w, ws, http.StatusOK)
}

func (s *Server) cancelImport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	ws.setPendingImport(nil)
	s.renderImport(w, ws, http.StatusOK)
}

func (s *Server) importTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", ingest.TemplateContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ingest.TemplateFileName))
	_, _ = w.Write(ingest.Template())
}
