package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/keja/keja/internal/auth"
	"github.com/keja/keja/internal/handler/dto"
	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/service"
	"github.com/keja/keja/internal/upload"
)

const defaultMultipartMemory = 8 << 20

// ListingHandler handles HTTP requests for listing operations.
type ListingHandler struct {
	svc       *service.ListingService
	uploads   *upload.Store
	logger    *slog.Logger
	maxMemory int64
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(svc *service.ListingService, uploads *upload.Store, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		svc:       svc,
		uploads:   uploads,
		logger:    logger,
		maxMemory: defaultMultipartMemory,
	}
}

// Create handles POST /api/v1/listings.
// Accepts JSON or multipart/form-data with an optional "image" file.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		input service.CreateListingInput
		image *imagePart
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(h.maxMemory); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields := service.NewValidationError()
		input = service.CreateListingInput{
			Title:       r.PostFormValue("title"),
			Category:    model.Category(r.PostFormValue("category")),
			Price:       r.PostFormValue("price"),
			Description: r.PostFormValue("description"),
			Location:    r.PostFormValue("location"),
			Latitude:    parseFormFloat(fields, r, "latitude"),
			Longitude:   parseFormFloat(fields, r, "longitude"),
		}
		if fields.HasErrors() {
			writeValidationError(w, fields.Fields)
			return
		}

		var ok bool
		if image, ok = h.formImage(w, r); !ok {
			return
		}
	} else {
		var req dto.CreateListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
		input = service.CreateListingInput{
			Title:       req.Title,
			Category:    model.Category(req.Category),
			Price:       req.Price,
			Description: req.Description,
			Location:    req.Location,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
		}
	}

	var ref string
	if image != nil {
		var ok bool
		if ref, ok = h.saveImage(w, image); !ok {
			return
		}
		input.ImageRef = &ref
	}

	listing, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), input)
	if err != nil {
		h.discardImage(ref)
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("listing_created",
		"listing_id", listing.ID,
		"owner_id", listing.OwnerID,
		"has_image", listing.HasImage(),
	)

	writeJSON(w, http.StatusCreated, dto.ToListingResponse(listing))
}

// Get handles GET /api/v1/listings/{id}.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(r)
	if !ok {
		handleServiceError(w, h.logger, service.ErrListingNotFound)
		return
	}

	listing, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToListingResponse(listing))
}

// Search handles GET /api/v1/listings?type=&location=.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	listings, err := h.svc.Search(r.Context(), service.SearchInput{
		Category: q.Get("type"),
		Location: q.Get("location"),
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingListResponse{
		Data: dto.ToListingResponses(listings),
	})
}

// ListByUser handles GET /api/v1/users/{handle}/listings.
func (h *ListingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	user, listings, err := h.svc.ListByOwnerHandle(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserListingsResponse{
		User: dto.ToUserResponse(user),
		Data: dto.ToListingResponses(listings),
	})
}

// Update handles PATCH /api/v1/listings/{id}.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(r)
	if !ok {
		handleServiceError(w, h.logger, service.ErrListingNotFound)
		return
	}

	var (
		input service.UpdateListingInput
		image *imagePart
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(h.maxMemory); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields := service.NewValidationError()
		input = service.UpdateListingInput{
			Title:       formValue(r, "title"),
			Price:       formValue(r, "price"),
			Description: formValue(r, "description"),
			Location:    formValue(r, "location"),
			ClearImage:  parseFormBool(fields, r, "remove_image"),
		}
		if c := formValue(r, "category"); c != nil {
			category := model.Category(*c)
			input.Category = &category
		}
		input.Latitude, input.ClearLatitude = parseFormFloatUpdate(fields, r, "latitude")
		input.Longitude, input.ClearLongitude = parseFormFloatUpdate(fields, r, "longitude")
		if fields.HasErrors() {
			writeValidationError(w, fields.Fields)
			return
		}

		if image, ok = h.formImage(w, r); !ok {
			return
		}
	} else {
		var req dto.UpdateListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
		input = service.UpdateListingInput{
			Title:          req.Title,
			Price:          req.Price,
			Description:    req.Description,
			Location:       req.Location,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			ClearLatitude:  req.ClearLatitude,
			ClearLongitude: req.ClearLongitude,
			ClearImage:     req.RemoveImage,
		}
		if req.Category != nil {
			category := model.Category(*req.Category)
			input.Category = &category
		}
	}

	var ref string
	if image != nil {
		if ref, ok = h.saveImage(w, image); !ok {
			return
		}
		input.ImageRef = &ref
		input.ClearImage = false
	}

	result, err := h.svc.Update(r.Context(), id, auth.UserIDFromContext(r.Context()), input)
	if err != nil {
		h.discardImage(ref)
		handleServiceError(w, h.logger, err)
		return
	}
	h.discardImage(result.ReplacedImage)

	h.logger.Info("listing_updated",
		"listing_id", result.Listing.ID,
		"owner_id", result.Listing.OwnerID,
		"image_replaced", result.ReplacedImage != "",
	)

	writeJSON(w, http.StatusOK, dto.ToListingResponse(result.Listing))
}

// Delete handles DELETE /api/v1/listings/{id}.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(r)
	if !ok {
		handleServiceError(w, h.logger, service.ErrListingNotFound)
		return
	}

	listing, err := h.svc.Delete(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if listing.HasImage() {
		h.discardImage(*listing.ImageRef)
	}

	h.logger.Info("listing_deleted",
		"listing_id", listing.ID,
		"owner_id", listing.OwnerID,
	)

	w.WriteHeader(http.StatusNoContent)
}

type imagePart struct {
	filename string
	file     multipart.File
}

// formImage returns the optional "image" file of a parsed multipart form.
func (h *ListingHandler) formImage(w http.ResponseWriter, r *http.Request) (*imagePart, bool) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid image upload")
		return nil, false
	}
	return &imagePart{filename: header.Filename, file: file}, true
}

// saveImage stores the uploaded file and closes it.
func (h *ListingHandler) saveImage(w http.ResponseWriter, image *imagePart) (string, bool) {
	defer image.file.Close()

	ref, err := h.uploads.Save(image.filename, image.file)
	switch {
	case err == nil:
		return ref, true
	case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrTooLarge):
		writeValidationError(w, map[string]string{"image": err.Error()})
	default:
		h.logger.Error("image_store_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
	return "", false
}

// discardImage removes a stored image, logging failures.
func (h *ListingHandler) discardImage(ref string) {
	if ref == "" {
		return
	}
	if err := h.uploads.Remove(ref); err != nil {
		h.logger.Warn("image_remove_failed",
			"image_ref", ref,
			"error", err,
		)
	}
}

func listingID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// formValue returns nil when the field is absent from the form.
func formValue(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func parseFormFloat(fields *service.ValidationError, r *http.Request, key string) *float64 {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fields.Add(key, "must be a number")
		return nil
	}
	return &f
}

// parseFormFloatUpdate treats a present but empty field as a request to
// clear the stored value.
func parseFormFloatUpdate(fields *service.ValidationError, r *http.Request, key string) (*float64, bool) {
	raw := formValue(r, key)
	if raw == nil {
		return nil, false
	}
	if strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	return parseFormFloat(fields, r, key), false
}

func parseFormBool(fields *service.ValidationError, r *http.Request, key string) bool {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		fields.Add(key, "must be true or false")
		return false
	}
	return b
}
