package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/service"
	"github.com/karitsu/gridpager/internal/view"
)

// GenerateHandler runs generation and streams per-page progress to the
// composer page.
type GenerateHandler struct {
	gen *service.GenerateService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(gen *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{gen: gen}
}

// HandleGenerate runs one generation pass and streams progress over SSE.
// Closing the connection cancels the run; pages finished before the
// signal stay downloadable.
// POST /generate?exclude=true|false
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	exclude := r.URL.Query().Get("exclude") == "true"

	sse := datastar.NewSSE(w, r)

	result, err := h.gen.Run(r.Context(), user.ID, service.RunOptions{
		Exclude: exclude,
		Progress: func(p domain.Progress) {
			sse.PatchElementTempl(
				view.GenerateProgress(p.PagesDone, p.PagesTotal),
				datastar.WithSelectorID("generate-progress"),
				datastar.WithModeInner(),
			)
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrGenerateBusy) {
			h.patchNotice(sse, "A generation run is already in progress.")
			return
		}
		if errors.Is(err, domain.ErrNoPictures) {
			h.patchNotice(sse, "Add pictures to the gallery first.")
			return
		}
		slog.Error("generate pages", "error", err)
		h.patchNotice(sse, "Generation failed. Please try again.")
		return
	}

	sse.PatchElementTempl(
		view.GenerateResults(result),
		datastar.WithSelectorID("generate-results"),
		datastar.WithModeInner(),
	)
}

// HandleCancel signals the user's active run.
// POST /generate/cancel
func (h *GenerateHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.gen.Cancel(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleResult returns metadata for the latest result.
// GET /api/generate/result
func (h *GenerateHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	result, err := h.gen.Result(user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			writeError(w, http.StatusNotFound, "No generated pages yet.")
			return
		}
		slog.Error("get result", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pages":     toPageDTOs(result.Pages),
		"cancelled": result.Cancelled,
	})
}

func (h *GenerateHandler) patchNotice(sse *datastar.ServerSentEventGenerator, message string) {
	sse.PatchElementTempl(
		view.GenerateNotice(message),
		datastar.WithSelectorID("generate-progress"),
		datastar.WithModeInner(),
	)
}
