package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/logger"
)

// maxUploadBytes caps document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Query  string `json:"query"`
	UseRAG *bool  `json:"use_rag,omitempty"`
}

// uploadResponse is returned by POST /upload.
type uploadResponse struct {
	Filename string              `json:"filename"`
	Report   domain.IngestReport `json:"report"`
}

// reloadResponse is returned by POST /reload.
type reloadResponse struct {
	RunID       string `json:"run_id"`
	FilesFound  int    `json:"files_found"`
	FilesLoaded int    `json:"files_loaded"`
}

// fileInfo describes a document file in the data folder.
type fileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return respondOK(c, map[string]string{
		"status":  "ok",
		"service": "askdoc",
		"version": Version,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.engine.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "stats: %v", err)
	}
	return respondOK(c, stats)
}

// handleChat answers a question. Generation failures are reported in
// the answer body rather than as HTTP errors, so clients always get a
// well-formed response for a well-formed request.
func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return respondError(c, http.StatusBadRequest, "query is required")
	}

	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	answer, err := s.engine.Ask(c.Request().Context(), req.Query, useRAG)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "ask: %v", err)
	}
	return respondOK(c, answer)
}

// handleUpload saves a .txt or .md file into the data folder and
// indexes it immediately. Re-uploading a file replaces its chunks.
func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "file field is required")
	}

	name := filepath.Base(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".txt" && ext != ".md" {
		return respondError(c, http.StatusBadRequest, "only .txt and .md files are supported")
	}
	if fileHeader.Size > maxUploadBytes {
		return respondError(c, http.StatusRequestEntityTooLarge, "file exceeds %d bytes", maxUploadBytes)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, "open upload: %v", err)
	}
	defer src.Close()

	destPath := filepath.Join(s.loader.DataDir(), name)
	if err := os.MkdirAll(s.loader.DataDir(), 0700); err != nil {
		return respondError(c, http.StatusInternalServerError, "create data folder: %v", err)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "save upload: %v", err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return respondError(c, http.StatusInternalServerError, "save upload: %v", err)
	}
	if err := dest.Close(); err != nil {
		return respondError(c, http.StatusInternalServerError, "save upload: %v", err)
	}

	report, err := s.loader.LoadFile(c.Request().Context(), destPath, domain.IngestOptions{Replace: true})
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, "index %s: %v", name, err)
	}

	logger.Info("API: uploaded %s (%d chunks)", name, report.ChunkCount)
	return respondOK(c, uploadResponse{Filename: name, Report: report})
}

// handleReload re-ingests every document in the data folder.
func (s *Server) handleReload(c echo.Context) error {
	run, err := s.loader.LoadAll(c.Request().Context(), domain.IngestOptions{})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "reload: %v", err)
	}
	return respondOK(c, reloadResponse{
		RunID:       run.RunID,
		FilesFound:  run.FilesFound,
		FilesLoaded: run.FilesLoaded,
	})
}

// handleFiles lists the document files in the data folder.
func (s *Server) handleFiles(c echo.Context) error {
	entries, err := os.ReadDir(s.loader.DataDir())
	if err != nil {
		if os.IsNotExist(err) {
			return respondOK(c, []fileInfo{})
		}
		return respondError(c, http.StatusInternalServerError, "list files: %v", err)
	}

	files := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{Name: entry.Name(), Size: info.Size()})
	}
	return respondOK(c, files)
}
