package slip

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/boleto-reader/internal/scanning"
)

// maxUploadSize bounds multipart uploads; phone photos are the large case
const maxUploadSize = int64(50 << 20)

// corsError writes a plain-text error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes {"error": message} plus any extra fields
func jsonError(w http.ResponseWriter, code int, message string, extra map[string]any) {
	body := map[string]any{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListSlips returns all scanned slips
func (s *Server) handleListSlips(w http.ResponseWriter, r *http.Request) {
	slips, err := s.service.ListSlips()
	if err != nil {
		slog.Error("Error listing slips", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, slips)
}

// ContentTypeFor guesses a MIME type from the file extension
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleUploadSlip scans an uploaded PDF or photo. Protected PDFs take their
// password from the "password" form field.
func (s *Server) handleUploadSlip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB.", nil)
			return
		}
		jsonError(w, http.StatusBadRequest, "Error parsing form", nil)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, http.StatusBadRequest, "No file was selected. Please choose a PDF or photo to upload.", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, http.StatusInternalServerError, "Error reading file. Please try again.", nil)
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = ContentTypeFor(header.Filename)
	}

	slip, err := s.service.ProcessDocument(r.Context(), header.Filename, data, contentType, r.FormValue("password"))
	switch {
	case errors.Is(err, scanning.ErrPasswordRequired), errors.Is(err, scanning.ErrBadPassword):
		jsonError(w, http.StatusUnprocessableEntity, err.Error(), map[string]any{"password_required": true})
		return
	case errors.Is(err, scanning.ErrUnsupported), errors.Is(err, scanning.ErrNoTranscriber):
		jsonError(w, http.StatusUnsupportedMediaType, err.Error(), nil)
		return
	case err != nil:
		slog.Error("Error processing slip", "filename", header.Filename, "error", err)
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, slip)
}

// handleGetSlip returns a single slip
func (s *Server) handleGetSlip(w http.ResponseWriter, r *http.Request) {
	slip, err := s.service.GetSlip(r.PathValue("id"))
	if err != nil {
		corsError(w, "Slip not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, slip)
}

// handleGetSlipFile returns the uploaded document of a slip
func (s *Server) handleGetSlipFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetSlipFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteSlip deletes a slip and its document
func (s *Server) handleDeleteSlip(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteSlip(r.PathValue("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		corsError(w, "Slip not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error deleting slip", "error", err)
		corsError(w, "Error deleting slip", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCheckLine validates a digit line typed by hand
func (s *Server) handleCheckLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line string `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.service.CheckLine(req.Line))
}
