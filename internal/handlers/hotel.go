package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/staybook/apiserver/internal/services"
	"github.com/staybook/apiserver/internal/store"
	"github.com/staybook/apiserver/types"
)

const (
	maxMultipartMemory = 16 << 20
	maxPhotoBytes      = 10 << 20
	formFieldPhoto     = "photo"
)

// HotelHandler provides HTTP handlers for hotel listings.
type HotelHandler struct {
	hotelService   *services.HotelService
	bookingService *services.BookingService
	userService    *services.UserService
}

// NewHotelHandler constructs a handler with the provided services.
func NewHotelHandler(hotelService *services.HotelService, bookingService *services.BookingService, userService *services.UserService) *HotelHandler {
	return &HotelHandler{
		hotelService:   hotelService,
		bookingService: bookingService,
		userService:    userService,
	}
}

// HotelRouter registers hotel routes on the given router.
func HotelRouter(
	r chi.Router,
	hotelService *services.HotelService,
	bookingService *services.BookingService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewHotelHandler(hotelService, bookingService, userService)

	r.Get("/", handler.SearchHotels)
	r.With(authMiddleware, handler.requireProvider).Get("/manage", handler.ManageHotels)
	r.With(authMiddleware, handler.requireProvider).Post("/", handler.AddHotel)
	r.Route("/{hotelID}", func(r chi.Router) {
		r.Get("/", handler.GetHotel)
		r.Get("/unavailable-dates", handler.UnavailableDates)
		r.Get("/availability", handler.CheckAvailability)
		r.With(authMiddleware, handler.requireProvider).Put("/", handler.UpdateHotel)
		r.With(authMiddleware, handler.requireProvider).Delete("/", handler.DeleteHotel)
		r.With(authMiddleware, handler.requireProvider).Get("/bookings", handler.HotelBookings)
		r.With(authMiddleware, handler.requireProvider).Post("/photos", handler.AttachPhoto)
		r.With(authMiddleware, handler.requireProvider).Delete("/photos", handler.RemovePhoto)
	})
}

// PhotoRouter serves stored hotel photos.
func PhotoRouter(r chi.Router, hotelService *services.HotelService) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(req, "*"), "/")
		if key == "" {
			writeError(w, http.StatusBadRequest, "missing photo key")
			return
		}

		reader, err := hotelService.Photo(req.Context(), key)
		if err != nil {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		defer reader.Close()

		_, _ = io.Copy(w, reader)
	})
}

func (h *HotelHandler) SearchHotels(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))

	var maxPrice *decimal.Decimal
	if raw := strings.TrimSpace(r.URL.Query().Get("max_price")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		maxPrice = &parsed
	}

	hotels, err := h.hotelService.Search(r.Context(), location, maxPrice)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search hotels")
		return
	}

	writeJSON(w, http.StatusOK, HotelListResponse{Items: hotels, Total: len(hotels)})
}

func (h *HotelHandler) GetHotel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	hotel, err := h.hotelService.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hotel)
}

// ManageHotels lists the authenticated provider's own hotels.
func (h *HotelHandler) ManageHotels(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	hotels, err := h.hotelService.ListByProvider(r.Context(), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list hotels")
		return
	}

	writeJSON(w, http.StatusOK, HotelListResponse{Items: hotels, Total: len(hotels)})
}

func (h *HotelHandler) AddHotel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	var req HotelUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	hotel, err := h.hotelService.Add(r.Context(), services.HotelInput{
		Name:          req.Name,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
	}, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, hotel)
}

func (h *HotelHandler) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	var req HotelUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	hotel, err := h.hotelService.Update(r.Context(), id, services.HotelInput{
		Name:          req.Name,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
	}, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hotel)
}

func (h *HotelHandler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	if err := h.hotelService.Delete(r.Context(), id, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HotelBookings lists bookings taken against one of the provider's
// hotels. Only the owner may see them.
func (h *HotelHandler) HotelBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	hotel, err := h.hotelService.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := services.RequireOwnership(actor, hotel.OwnerID, "view bookings for hotels you don't own"); err != nil {
		writeDomainError(w, err)
		return
	}

	bookings, err := h.bookingService.ListByHotel(r.Context(), hotel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, BookingListResponse{Items: bookings, Total: len(bookings)})
}

func (h *HotelHandler) UnavailableDates(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	from, err := types.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	to, err := types.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	dates, err := h.bookingService.UnavailableDates(r.Context(), id, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"unavailable_dates": dates})
}

func (h *HotelHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	checkIn, err := types.ParseDate(r.URL.Query().Get("check_in"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_in date")
		return
	}
	checkOut, err := types.ParseDate(r.URL.Query().Get("check_out"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_out date")
		return
	}

	available, err := h.bookingService.AreDatesAvailable(r.Context(), id, checkIn, checkOut)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

// AttachPhoto accepts a multipart photo upload for an owned hotel.
func (h *HotelHandler) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	photo, err := parsePhotoFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hotel, err := h.hotelService.AttachPhoto(r.Context(), id, actor, photo.Filename, photo.Data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, hotel)
}

// RemovePhoto drops a photo key from an owned hotel.
func (h *HotelHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.loadActor(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing photo key")
		return
	}

	hotel, err := h.hotelService.RemovePhoto(r.Context(), id, actor, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hotel)
}

// HotelUpsertRequest is the JSON payload for creating or updating a hotel.
type HotelUpsertRequest struct {
	Name          string          `json:"name"`
	Location      string          `json:"location"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

// HotelListResponse is the hotel list payload.
type HotelListResponse struct {
	Items []types.Hotel `json:"items"`
	Total int           `json:"total"`
}

// PhotoFile represents an uploaded hotel photo.
type PhotoFile struct {
	Filename string
	Data     []byte
}

func parsePhotoFile(form *multipart.Form) (PhotoFile, error) {
	if form == nil {
		return PhotoFile{}, errors.New("missing form data")
	}

	files := form.File[formFieldPhoto]
	if len(files) == 0 {
		return PhotoFile{}, errors.New("photo file is required")
	}
	if len(files) > 1 {
		return PhotoFile{}, errors.New("only one photo file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return PhotoFile{}, errors.New("failed to read photo file")
	}

	data, err := readFileLimited(file, maxPhotoBytes)
	_ = file.Close()
	if err != nil {
		return PhotoFile{}, err
	}

	return PhotoFile{
		Filename: fileHeader.Filename,
		Data:     data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

// loadActor resolves the authenticated user from the request context.
func (h *HotelHandler) loadActor(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	return loadActor(w, r, h.userService)
}

// requireProvider rejects requests whose actor lacks the provider role.
func (h *HotelHandler) requireProvider(next http.Handler) http.Handler {
	return requireRole(h.userService, types.RoleProvider, next)
}

func loadActor(w http.ResponseWriter, r *http.Request, userService *services.UserService) (types.User, bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return types.User{}, false
	}

	user, err := userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return types.User{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return types.User{}, false
	}
	return user, true
}

func requireRole(userService *services.UserService, role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := loadActor(w, r, userService)
		if !ok {
			return
		}
		if user.Role != role {
			writeError(w, http.StatusForbidden, role+" access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
