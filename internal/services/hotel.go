package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/staybook/apiserver/internal/store"
	"github.com/staybook/apiserver/types"
)

// HotelRepository defines persistence operations for hotels.
type HotelRepository interface {
	GetByID(ctx context.Context, id int) (types.Hotel, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Hotel, error)
	Search(ctx context.Context, location string, maxPrice *decimal.Decimal) ([]types.Hotel, error)
	Create(ctx context.Context, hotel types.Hotel) (types.Hotel, error)
	Update(ctx context.Context, hotel types.Hotel) (types.Hotel, error)
	Delete(ctx context.Context, id int) error
}

// PhotoStore holds hotel photo objects.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// AvailabilityCache caches unavailable-date lookups per hotel. A nil
// cache disables caching; implementations must be safe for concurrent
// use.
type AvailabilityCache interface {
	Get(ctx context.Context, hotelID int, from, to types.Date) ([]types.Date, bool)
	Set(ctx context.Context, hotelID int, from, to types.Date, dates []types.Date)
	Invalidate(ctx context.Context, hotelID int)
}

// HotelService encapsulates hotel management use-cases.
type HotelService struct {
	repo   HotelRepository
	photos PhotoStore
	cache  AvailabilityCache
	log    zerolog.Logger
}

func NewHotelService(repo HotelRepository, photos PhotoStore, cache AvailabilityCache, log zerolog.Logger) *HotelService {
	return &HotelService{repo: repo, photos: photos, cache: cache, log: log}
}

// Add validates the fields and persists a hotel owned by owner.
//
// Add does not check the owner's role: callers are responsible for
// asserting the actor is a provider before calling, and the passed
// owner reference is trusted as-is.
func (s *HotelService) Add(ctx context.Context, in HotelInput, owner types.User) (types.Hotel, error) {
	if err := in.Validate(); err != nil {
		return types.Hotel{}, err
	}

	hotel, err := s.repo.Create(ctx, types.Hotel{
		Name:          strings.TrimSpace(in.Name),
		Location:      strings.TrimSpace(in.Location),
		PricePerNight: in.PricePerNight,
		OwnerID:       owner.ID,
	})
	if err != nil {
		return types.Hotel{}, fmt.Errorf("unable to add hotel: %w", err)
	}
	hotel.Owner = owner
	return hotel, nil
}

// Update re-validates the fields and persists them if the actor owns
// the hotel.
func (s *HotelService) Update(ctx context.Context, hotelID int, in HotelInput, actor types.User) (types.Hotel, error) {
	if err := in.Validate(); err != nil {
		return types.Hotel{}, err
	}

	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return types.Hotel{}, err
	}
	if err := RequireOwnership(actor, hotel.OwnerID, "update this hotel"); err != nil {
		return types.Hotel{}, err
	}

	hotel.Name = strings.TrimSpace(in.Name)
	hotel.Location = strings.TrimSpace(in.Location)
	hotel.PricePerNight = in.PricePerNight

	updated, err := s.repo.Update(ctx, hotel)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Hotel{}, &HotelNotFoundError{ID: hotelID}
		}
		return types.Hotel{}, fmt.Errorf("unable to update hotel: %w", err)
	}
	return updated, nil
}

// Delete removes the hotel if the actor owns it. Bookings cascade with
// the row; photo objects and cached availability are cleaned up
// best-effort afterwards.
func (s *HotelService) Delete(ctx context.Context, hotelID int, actor types.User) error {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return err
	}
	if err := RequireOwnership(actor, hotel.OwnerID, "delete this hotel"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, hotelID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &HotelNotFoundError{ID: hotelID}
		}
		return fmt.Errorf("unable to delete hotel: %w", err)
	}

	if s.photos != nil {
		for _, key := range hotel.PhotoKeys {
			if err := s.photos.Delete(ctx, key); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("failed to delete hotel photo")
			}
		}
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, hotelID)
	}
	return nil
}

// ListByProvider returns every hotel owned by the actor.
func (s *HotelService) ListByProvider(ctx context.Context, actor types.User) ([]types.Hotel, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

// Search filters hotels by case-insensitive location substring and/or
// a price ceiling. Both filters absent returns all hotels; no match
// returns an empty slice.
func (s *HotelService) Search(ctx context.Context, location string, maxPrice *decimal.Decimal) ([]types.Hotel, error) {
	return s.repo.Search(ctx, strings.TrimSpace(location), maxPrice)
}

// GetByID returns the hotel with its owner resolved, or
// HotelNotFoundError.
func (s *HotelService) GetByID(ctx context.Context, id int) (types.Hotel, error) {
	hotel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Hotel{}, &HotelNotFoundError{ID: id}
		}
		return types.Hotel{}, fmt.Errorf("unable to find hotel with ID %d: %w", id, err)
	}
	return hotel, nil
}

// AttachPhoto uploads a photo for the hotel and records its key on the
// listing. Only the owner may attach photos.
func (s *HotelService) AttachPhoto(ctx context.Context, hotelID int, actor types.User, filename string, data []byte) (types.Hotel, error) {
	if s.photos == nil {
		return types.Hotel{}, errors.New("photo storage is not configured")
	}

	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return types.Hotel{}, err
	}
	if err := RequireOwnership(actor, hotel.OwnerID, "manage photos for this hotel"); err != nil {
		return types.Hotel{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("hotels/%d/%s%s", hotelID, uuid.NewString(), ext)
	if err := s.photos.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.Hotel{}, fmt.Errorf("unable to store photo: %w", err)
	}

	hotel.PhotoKeys = append(hotel.PhotoKeys, key)
	updated, err := s.repo.Update(ctx, hotel)
	if err != nil {
		return types.Hotel{}, fmt.Errorf("unable to record photo: %w", err)
	}
	return updated, nil
}

// RemovePhoto deletes a photo object and drops its key from the
// listing. Only the owner may remove photos.
func (s *HotelService) RemovePhoto(ctx context.Context, hotelID int, actor types.User, key string) (types.Hotel, error) {
	if s.photos == nil {
		return types.Hotel{}, errors.New("photo storage is not configured")
	}

	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return types.Hotel{}, err
	}
	if err := RequireOwnership(actor, hotel.OwnerID, "manage photos for this hotel"); err != nil {
		return types.Hotel{}, err
	}

	kept := make([]string, 0, len(hotel.PhotoKeys))
	found := false
	for _, k := range hotel.PhotoKeys {
		if k == key {
			found = true
			continue
		}
		kept = append(kept, k)
	}
	if !found {
		return types.Hotel{}, newValidationError(FieldViolation{Field: "key", Message: "unknown photo key"})
	}

	if err := s.photos.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete hotel photo")
	}

	hotel.PhotoKeys = kept
	updated, err := s.repo.Update(ctx, hotel)
	if err != nil {
		return types.Hotel{}, fmt.Errorf("unable to record photo removal: %w", err)
	}
	return updated, nil
}

// Photo opens a stored photo object for streaming.
func (s *HotelService) Photo(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.photos == nil {
		return nil, errors.New("photo storage is not configured")
	}
	return s.photos.Get(ctx, key)
}
