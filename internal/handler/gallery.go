package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/service"
	"github.com/karitsu/gridpager/internal/view"
)

// maxUploadForm bounds one multipart upload batch.
const maxUploadForm = 100 << 20 // 100MB

// GalleryHandler handles picture upload, ordering, retrieval, and deletion.
type GalleryHandler struct {
	gallery *service.GalleryService
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// HandleUpload processes a multipart batch upload and re-renders the
// gallery grid via SSE.
// POST /pictures
func (h *GalleryHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		http.Error(w, "Upload too large", http.StatusBadRequest)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
		http.Error(w, "No image files provided", http.StatusBadRequest)
		return
	}

	var uploads []service.Upload
	for _, header := range r.MultipartForm.File["images"] {
		file, err := header.Open()
		if err != nil {
			slog.Error("open upload part", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			slog.Error("read upload part", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		// Detect content type from file bytes (more reliable than multipart header).
		uploads = append(uploads, service.Upload{
			Filename:    header.Filename,
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}

	report, err := h.gallery.Import(r.Context(), user.ID, uploads)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("import pictures", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if report.Rejected > 0 || report.Duplicates > 0 {
		slog.Info("import skipped files", "user", user.ID,
			"duplicates", report.Duplicates, "rejected", report.Rejected)
	}

	h.patchGallery(w, r, user.ID)
}

// HandleList returns the user's gallery in display order.
// GET /api/pictures
func (h *GalleryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	pics, err := h.gallery.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list pictures", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pictures": toPictureDTOs(pics),
	})
}

// HandleFile serves a picture's original bytes with correct Content-Type.
// GET /pictures/{id}/file
func (h *GalleryHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, contentType, err := h.gallery.GetFile(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("serve picture", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleThumbnail serves a small JPEG preview for the gallery grid.
// GET /pictures/{id}/thumb
func (h *GalleryHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	thumb, err := h.gallery.Thumbnail(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("render thumbnail", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb)))
	w.Write(thumb)
}

// HandleReplace swaps a picture's payload in place and re-renders the
// gallery grid via SSE.
// POST /pictures/{id}/replace
func (h *GalleryHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		http.Error(w, "Upload too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	_, err = h.gallery.Replace(r.Context(), user.ID, r.PathValue("id"), service.Upload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(data),
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("replace picture", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.patchGallery(w, r, user.ID)
}

// HandleDelete removes a picture and re-renders the gallery grid via SSE.
// POST /pictures/{id}/delete
func (h *GalleryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.gallery.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("delete picture", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.patchGallery(w, r, user.ID)
}

// HandleClear empties the gallery and re-renders the grid via SSE.
// POST /gallery/clear
func (h *GalleryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.gallery.Clear(r.Context(), user.ID); err != nil {
		slog.Error("clear gallery", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.patchGallery(w, r, user.ID)
}

// HandleReorder applies a full permutation of the gallery.
// POST /gallery/reorder
// Request: {"ids":["...","..."]}
func (h *GalleryHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.gallery.Reorder(r.Context(), user.ID, req.IDs); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("reorder gallery", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// patchGallery re-renders the gallery grid fragment via SSE.
func (h *GalleryHandler) patchGallery(w http.ResponseWriter, r *http.Request, userID int64) {
	pics, err := h.gallery.List(r.Context(), userID)
	if err != nil {
		slog.Error("list pictures after change", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.GalleryGrid(pics),
		datastar.WithSelectorID("gallery-grid"),
		datastar.WithModeInner(),
	)
}
