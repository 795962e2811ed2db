package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// maxUploadSize covers high-resolution phone photos
const maxUploadSize = int64(50 << 20)

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// contentTypeFor picks a MIME type for an upload, falling back to the file extension
func contentTypeFor(header string, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleIndex serves the upload page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleProcessReceipt runs OCR over an uploaded image and returns the parsed receipt
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "No image file provided")
		return
	}

	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error processing receipt")
		return
	}

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)

	scan, err := s.service.ProcessReceipt(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Error processing receipt")
		return
	}

	writeJSON(w, http.StatusOK, NewResult(scan))
}

// handleParseText parses OCR text supplied by the caller
func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&req); err != nil || req.Text == nil {
		writeError(w, http.StatusBadRequest, "Request body must be JSON with a text field")
		return
	}

	writeJSON(w, http.StatusOK, Result{
		Success:       true,
		RawText:       *req.Text,
		ParsedReceipt: s.service.ParseText(*req.Text),
	})
}

// handleListScans returns all processed scans
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.service.ListScans()
	if err != nil {
		slog.Error("Error listing scans", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, scans)
}

// handleGetScan returns a single scan
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.service.GetScan(r.PathValue("id"))
	if err != nil {
		writeScanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scan)
}

// handleGetScanFile returns the stored image for a scan
func (s *Server) handleGetScanFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetScanFile(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNoFile) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeScanError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteScan deletes a scan and its image
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteScan(r.PathValue("id")); err != nil {
		writeScanError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeScanError maps service errors to a status code
func writeScanError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Scan not found")
		return
	}
	slog.Error("Error handling scan request", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
