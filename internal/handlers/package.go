package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tourzen-backend/internal/middleware"
	"tourzen-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PackageHandler handles tour package HTTP requests
type PackageHandler struct {
	catalogService *services.CatalogService
	galleryService *services.GalleryService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(catalogService *services.CatalogService, galleryService *services.GalleryService) *PackageHandler {
	return &PackageHandler{
		catalogService: catalogService,
		galleryService: galleryService,
	}
}

// List handles GET /api/v1/packages
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	query := services.ListQuery{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		query.Limit = limit
	}

	list, err := h.catalogService.ListPackages(r.Context(), query)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// Featured handles GET /api/v1/packages/featured
func (h *PackageHandler) Featured(w http.ResponseWriter, r *http.Request) {
	packages, err := h.catalogService.ListFeatured(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, packages)
}

// GalleryImages handles GET /api/v1/packages/gallery-images
func (h *PackageHandler) GalleryImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.galleryService.GalleryImages(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list gallery images")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, images)
}

// MyPackages handles GET /api/v1/packages/my-packages
func (h *PackageHandler) MyPackages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	packages, err := h.catalogService.GetMyPackages(ctx, session)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, packages)
}

// Get handles GET /api/v1/packages/{id}. A valid bearer token enriches the
// response with the caller's booking state.
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	packageID := chi.URLParam(r, "id")

	var sessionPtr *services.Session
	if session, ok := middleware.GetSession(ctx); ok {
		sessionPtr = &session
	}

	state, err := h.catalogService.GetPackageWithBookingState(ctx, packageID, sessionPtr)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Create handles POST /api/v1/packages
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	var input services.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pkg, err := h.catalogService.CreatePackage(ctx, session, input)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("package_id", pkg.ID).
		Str("tour_name", pkg.TourName).
		Msg("Package created")

	respondJSON(w, http.StatusCreated, pkg)
}

// Update handles PUT /api/v1/packages/{id}
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)
	packageID := chi.URLParam(r, "id")

	var input services.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pkg, err := h.catalogService.UpdatePackage(ctx, packageID, session, input)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("package_id", pkg.ID).
		Msg("Package updated")

	respondJSON(w, http.StatusOK, pkg)
}

// Delete handles DELETE /api/v1/packages/{id}
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)
	packageID := chi.URLParam(r, "id")

	if err := h.catalogService.DeletePackage(ctx, packageID, session); err != nil {
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("package_id", packageID).
		Msg("Package deleted")

	w.WriteHeader(http.StatusNoContent)
}

// UploadRequest asks for a pre-signed package image upload URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// PresignUpload handles POST /api/v1/packages/image-upload
func (h *PackageHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSession(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.galleryService.PresignUpload(ctx, req.Filename, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", session.UserID).
			Str("filename", req.Filename).
			Msg("Failed to generate upload URL")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}
