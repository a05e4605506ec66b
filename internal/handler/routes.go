package handler

import (
	"net/http"

	"github.com/karitsu/gridpager/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	gallery *service.GalleryService,
	layout *service.LayoutService,
	gen *service.GenerateService,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	galleryHandler := NewGalleryHandler(gallery)
	settingsHandler := NewSettingsHandler(layout)
	generateHandler := NewGenerateHandler(gen)
	exportHandler := NewExportHandler(gen)
	pageHandler := NewPageHandler(gallery, layout)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Pages.
	mux.Handle("GET /", OptionalAuth(auth, http.HandlerFunc(pageHandler.HandleHome)))
	mux.Handle("GET /login", OptionalAuth(auth, http.HandlerFunc(pageHandler.HandleLogin)))
	mux.Handle("GET /app", OptionalAuth(auth, http.HandlerFunc(pageHandler.HandleApp)))

	// Auth API.
	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe)))

	// Gallery.
	mux.Handle("POST /pictures", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleUpload)))
	mux.Handle("GET /api/pictures", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleList)))
	mux.Handle("GET /pictures/{id}/file", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleFile)))
	mux.Handle("GET /pictures/{id}/thumb", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleThumbnail)))
	mux.Handle("POST /pictures/{id}/replace", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleReplace)))
	mux.Handle("POST /pictures/{id}/delete", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleDelete)))
	mux.Handle("POST /gallery/reorder", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleReorder)))
	mux.Handle("POST /gallery/clear", RequireAuth(auth, http.HandlerFunc(galleryHandler.HandleClear)))

	// Settings.
	mux.Handle("GET /api/settings", RequireAuth(auth, http.HandlerFunc(settingsHandler.HandleGet)))
	mux.Handle("POST /api/settings", RequireAuth(auth, http.HandlerFunc(settingsHandler.HandleSave)))
	mux.Handle("GET /settings/assets/{kind}", RequireAuth(auth, http.HandlerFunc(settingsHandler.HandleAssetServe)))
	mux.Handle("POST /settings/assets/{kind}", RequireAuth(auth, http.HandlerFunc(settingsHandler.HandleAssetUpload)))
	mux.Handle("POST /settings/assets/{kind}/delete", RequireAuth(auth, http.HandlerFunc(settingsHandler.HandleAssetDelete)))

	// Generation.
	mux.Handle("POST /generate", RequireAuth(auth, http.HandlerFunc(generateHandler.HandleGenerate)))
	mux.Handle("POST /generate/cancel", RequireAuth(auth, http.HandlerFunc(generateHandler.HandleCancel)))
	mux.Handle("GET /api/generate/result", RequireAuth(auth, http.HandlerFunc(generateHandler.HandleResult)))

	// Exports.
	mux.Handle("GET /preview", RequireAuth(auth, http.HandlerFunc(exportHandler.HandlePreview)))
	mux.Handle("GET /export/pages/{index}", RequireAuth(auth, http.HandlerFunc(exportHandler.HandlePage)))
	mux.Handle("GET /export/combined", RequireAuth(auth, http.HandlerFunc(exportHandler.HandleCombined)))
	mux.Handle("GET /export/archive", RequireAuth(auth, http.HandlerFunc(exportHandler.HandleArchive)))
}
