package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/service"
)

// ExportHandler serves the latest generation result as downloads.
type ExportHandler struct {
	gen *service.GenerateService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(gen *service.GenerateService) *ExportHandler {
	return &ExportHandler{gen: gen}
}

// HandlePage downloads one generated page.
// GET /export/pages/{index}
func (h *ExportHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	page, err := h.gen.Page(user.ID, index)
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) || errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("export page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	serveDownload(w, page.Filename, page.MIMEType, page.Data)
}

// HandleCombined downloads all pages joined into one tall image.
// GET /export/combined
func (h *ExportHandler) HandleCombined(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	combined, filename, err := h.gen.Combined(user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("export combined image", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	serveDownload(w, filename, combined.MIMEType, combined.Data)
}

// HandleArchive downloads all pages as a ZIP.
// GET /export/archive
func (h *ExportHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Headers must go out before the first archive byte, so any result
	// error is checked up front.
	if _, err := h.gen.Result(user.ID); err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("export archive", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="grid-pages.zip"`)
	if err := h.gen.WriteArchive(w, user.ID); err != nil {
		slog.Error("write archive", "error", err)
	}
}

// HandlePreview renders the first page at reduced scale for inline
// display in the composer.
// GET /preview
func (h *ExportHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, contentType, err := h.gen.Preview(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoPictures) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("render preview", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func serveDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
