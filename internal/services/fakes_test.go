package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/staybook/apiserver/internal/store"
	"github.com/staybook/apiserver/types"
)

// In-memory repositories mirroring the store package's contract,
// including sentinel errors and the atomic conflict check on booking
// creation.

type fakeHotelRepo struct {
	hotels map[int]types.Hotel
	nextID int
}

func newFakeHotelRepo() *fakeHotelRepo {
	return &fakeHotelRepo{hotels: make(map[int]types.Hotel), nextID: 1}
}

func (r *fakeHotelRepo) GetByID(_ context.Context, id int) (types.Hotel, error) {
	hotel, ok := r.hotels[id]
	if !ok {
		return types.Hotel{}, store.ErrNotFound
	}
	return hotel, nil
}

func (r *fakeHotelRepo) ListByOwner(_ context.Context, ownerID int) ([]types.Hotel, error) {
	var out []types.Hotel
	for _, h := range r.hotels {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeHotelRepo) Search(_ context.Context, location string, maxPrice *decimal.Decimal) ([]types.Hotel, error) {
	var out []types.Hotel
	for _, h := range r.hotels {
		if location != "" && !strings.Contains(strings.ToLower(h.Location), strings.ToLower(location)) {
			continue
		}
		if maxPrice != nil && h.PricePerNight.GreaterThan(*maxPrice) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeHotelRepo) Create(_ context.Context, hotel types.Hotel) (types.Hotel, error) {
	hotel.ID = r.nextID
	r.nextID++
	r.hotels[hotel.ID] = hotel
	return hotel, nil
}

func (r *fakeHotelRepo) Update(_ context.Context, hotel types.Hotel) (types.Hotel, error) {
	if _, ok := r.hotels[hotel.ID]; !ok {
		return types.Hotel{}, store.ErrNotFound
	}
	r.hotels[hotel.ID] = hotel
	return hotel, nil
}

func (r *fakeHotelRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.hotels[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.hotels, id)
	return nil
}

type fakeBookingRepo struct {
	hotels       *fakeHotelRepo
	bookings     map[int]types.Booking
	nextID       int
	windowCalls  int
	overlapCalls int
}

func newFakeBookingRepo(hotels *fakeHotelRepo) *fakeBookingRepo {
	return &fakeBookingRepo{hotels: hotels, bookings: make(map[int]types.Booking), nextID: 1}
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int) (types.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return types.Booking{}, store.ErrNotFound
	}
	return booking, nil
}

func (r *fakeBookingRepo) ListByUser(_ context.Context, userID int) ([]types.Booking, error) {
	return r.filter(func(b types.Booking) bool { return b.UserID == userID }), nil
}

func (r *fakeBookingRepo) ListByHotel(_ context.Context, hotelID int) ([]types.Booking, error) {
	return r.filter(func(b types.Booking) bool { return b.HotelID == hotelID }), nil
}

func (r *fakeBookingRepo) ListByProvider(_ context.Context, providerID int) ([]types.Booking, error) {
	return r.filter(func(b types.Booking) bool {
		hotel, ok := r.hotels.hotels[b.HotelID]
		return ok && hotel.OwnerID == providerID
	}), nil
}

func (r *fakeBookingRepo) ListOverlapping(_ context.Context, hotelID int, checkIn, checkOut types.Date) ([]types.Booking, error) {
	r.overlapCalls++
	return r.filter(func(b types.Booking) bool {
		return b.HotelID == hotelID && b.Overlaps(checkIn, checkOut)
	}), nil
}

func (r *fakeBookingRepo) ListInWindow(_ context.Context, hotelID int, from, to types.Date) ([]types.Booking, error) {
	r.windowCalls++
	return r.filter(func(b types.Booking) bool {
		return b.HotelID == hotelID && !b.CheckIn.After(to) && !b.CheckOut.Before(from)
	}), nil
}

func (r *fakeBookingRepo) Create(_ context.Context, booking types.Booking) (types.Booking, error) {
	if _, ok := r.hotels.hotels[booking.HotelID]; !ok {
		return types.Booking{}, store.ErrNotFound
	}
	for _, b := range r.bookings {
		if b.HotelID == booking.HotelID && b.Overlaps(booking.CheckIn, booking.CheckOut) {
			return types.Booking{}, store.ErrConflict
		}
	}
	booking.ID = r.nextID
	r.nextID++
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.bookings[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *fakeBookingRepo) filter(keep func(types.Booking) bool) []types.Booking {
	var out []types.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type publishedEvent struct {
	channel string
	data    []byte
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	p.events = append(p.events, publishedEvent{channel: channel, data: data})
	return fmt.Sprintf("msg-%d", len(p.events)), nil
}

type fakeCache struct {
	entries     map[string][]types.Date
	invalidated []int
	hits        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]types.Date)}
}

func (c *fakeCache) key(hotelID int, from, to types.Date) string {
	return fmt.Sprintf("%d:%s:%s", hotelID, from, to)
}

func (c *fakeCache) Get(_ context.Context, hotelID int, from, to types.Date) ([]types.Date, bool) {
	dates, ok := c.entries[c.key(hotelID, from, to)]
	if ok {
		c.hits++
	}
	return dates, ok
}

func (c *fakeCache) Set(_ context.Context, hotelID int, from, to types.Date, dates []types.Date) {
	c.entries[c.key(hotelID, from, to)] = dates
}

func (c *fakeCache) Invalidate(_ context.Context, hotelID int) {
	c.invalidated = append(c.invalidated, hotelID)
	prefix := fmt.Sprintf("%d:", hotelID)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role string) ([]types.User, error) {
	var out []types.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Verify(plain, hash string) bool { return hash == "hashed:"+plain }
