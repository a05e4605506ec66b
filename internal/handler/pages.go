package handler

import (
	"log/slog"
	"net/http"

	"github.com/karitsu/gridpager/internal/service"
	"github.com/karitsu/gridpager/internal/view"
)

// PageHandler renders the HTML pages.
type PageHandler struct {
	gallery *service.GalleryService
	layout  *service.LayoutService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(gallery *service.GalleryService, layout *service.LayoutService) *PageHandler {
	return &PageHandler{gallery: gallery, layout: layout}
}

// HandleHome renders the landing page, or sends signed-in users straight
// to the composer.
// GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	view.HomePage().Render(r.Context(), w)
}

// HandleLogin renders the sign-in page.
// GET /login
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	view.LoginPage().Render(r.Context(), w)
}

// HandleApp renders the composer page with the user's gallery and
// settings.
// GET /app
func (h *PageHandler) HandleApp(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	pics, err := h.gallery.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list pictures for composer", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	settings, err := h.layout.Get(r.Context(), user.ID)
	if err != nil {
		slog.Error("get settings for composer", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.AppPage(user.Username, pics, settings).Render(r.Context(), w)
}
