package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/staybook/apiserver/types"
)

func newHotelService(t *testing.T) (*HotelService, *fakeHotelRepo) {
	t.Helper()
	repo := newFakeHotelRepo()
	return NewHotelService(repo, nil, nil, zerolog.Nop()), repo
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestHotelAddAndGet(t *testing.T) {
	svc, _ := newHotelService(t)
	ctx := context.Background()
	owner := types.User{ID: 1, Role: types.RoleProvider}

	hotel, err := svc.Add(ctx, HotelInput{Name: "  Seaside Inn ", Location: " Lisbon ", PricePerNight: price(120)}, owner)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if hotel.Name != "Seaside Inn" || hotel.Location != "Lisbon" {
		t.Fatalf("fields should be trimmed: %+v", hotel)
	}
	if hotel.OwnerID != owner.ID {
		t.Fatalf("owner not recorded: %+v", hotel)
	}

	fetched, err := svc.GetByID(ctx, hotel.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.ID != hotel.ID || fetched.Name != "Seaside Inn" {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}

	var nfErr *HotelNotFoundError
	if _, err := svc.GetByID(ctx, 999); !errors.As(err, &nfErr) {
		t.Fatalf("expected HotelNotFoundError, got %v", err)
	}
}

func TestHotelAddValidation(t *testing.T) {
	svc, repo := newHotelService(t)
	owner := types.User{ID: 1, Role: types.RoleProvider}

	var vErr *ValidationError
	_, err := svc.Add(context.Background(), HotelInput{Name: "", Location: " ", PricePerNight: price(0)}, owner)
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.Violations) != 3 {
		t.Fatalf("expected all three violations reported, got %+v", vErr.Violations)
	}
	if len(repo.hotels) != 0 {
		t.Fatalf("invalid hotel should not persist")
	}

	_, err = svc.Add(context.Background(), HotelInput{Name: "Inn", Location: "Lisbon", PricePerNight: decimal.NewFromInt(-5)}, owner)
	if !errors.As(err, &vErr) {
		t.Fatalf("negative price: expected ValidationError, got %v", err)
	}
}

func TestHotelUpdateOwnership(t *testing.T) {
	svc, _ := newHotelService(t)
	ctx := context.Background()
	owner := types.User{ID: 1, Role: types.RoleProvider}
	rival := types.User{ID: 2, Role: types.RoleProvider}

	hotel, err := svc.Add(ctx, HotelInput{Name: "Seaside Inn", Location: "Lisbon", PricePerNight: price(120)}, owner)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := svc.Update(ctx, hotel.ID, HotelInput{Name: "Seaside Inn & Spa", Location: "Lisbon", PricePerNight: price(150)}, owner)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Seaside Inn & Spa" || !updated.PricePerNight.Equal(price(150)) {
		t.Fatalf("update not applied: %+v", updated)
	}

	var uaErr *UnauthorizedError
	_, err = svc.Update(ctx, hotel.ID, HotelInput{Name: "Hijacked", Location: "Lisbon", PricePerNight: price(1)}, rival)
	if !errors.As(err, &uaErr) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}

	after, err := svc.GetByID(ctx, hotel.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Name != "Seaside Inn & Spa" {
		t.Fatalf("denied update must leave the hotel unchanged: %+v", after)
	}
}

func TestHotelDeleteOwnership(t *testing.T) {
	svc, repo := newHotelService(t)
	ctx := context.Background()
	owner := types.User{ID: 1, Role: types.RoleProvider}
	rival := types.User{ID: 2, Role: types.RoleProvider}

	hotel, err := svc.Add(ctx, HotelInput{Name: "Seaside Inn", Location: "Lisbon", PricePerNight: price(120)}, owner)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	var uaErr *UnauthorizedError
	if err := svc.Delete(ctx, hotel.ID, rival); !errors.As(err, &uaErr) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}
	if len(repo.hotels) != 1 {
		t.Fatalf("denied delete must leave the hotel in place")
	}

	if err := svc.Delete(ctx, hotel.ID, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nfErr *HotelNotFoundError
	if _, err := svc.GetByID(ctx, hotel.ID); !errors.As(err, &nfErr) {
		t.Fatalf("expected HotelNotFoundError after delete, got %v", err)
	}
	if err := svc.Delete(ctx, hotel.ID, owner); !errors.As(err, &nfErr) {
		t.Fatalf("deleting twice should report not found, got %v", err)
	}
}

func TestHotelSearch(t *testing.T) {
	svc, _ := newHotelService(t)
	ctx := context.Background()
	owner := types.User{ID: 1, Role: types.RoleProvider}

	seed := []HotelInput{
		{Name: "Seaside Inn", Location: "Lisbon", PricePerNight: price(120)},
		{Name: "Harbor View", Location: "Lisbon", PricePerNight: price(220)},
		{Name: "Mountain Lodge", Location: "Andorra", PricePerNight: price(90)},
	}
	for _, in := range seed {
		if _, err := svc.Add(ctx, in, owner); err != nil {
			t.Fatalf("add %q: %v", in.Name, err)
		}
	}

	all, err := svc.Search(ctx, "", nil)
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all hotels, got %d", len(all))
	}

	lisbon, err := svc.Search(ctx, "lisbon", nil)
	if err != nil {
		t.Fatalf("search location: %v", err)
	}
	if len(lisbon) != 2 {
		t.Fatalf("case-insensitive location match failed, got %d", len(lisbon))
	}

	ceiling := price(150)
	cheap, err := svc.Search(ctx, "Lisbon", &ceiling)
	if err != nil {
		t.Fatalf("search price: %v", err)
	}
	if len(cheap) != 1 || cheap[0].Name != "Seaside Inn" {
		t.Fatalf("combined filters failed: %+v", cheap)
	}

	none, err := svc.Search(ctx, "Atlantis", nil)
	if err != nil {
		t.Fatalf("search miss: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestHotelListByProvider(t *testing.T) {
	svc, _ := newHotelService(t)
	ctx := context.Background()
	owner := types.User{ID: 1, Role: types.RoleProvider}
	rival := types.User{ID: 2, Role: types.RoleProvider}

	if _, err := svc.Add(ctx, HotelInput{Name: "Seaside Inn", Location: "Lisbon", PricePerNight: price(120)}, owner); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, HotelInput{Name: "Mountain Lodge", Location: "Andorra", PricePerNight: price(90)}, rival); err != nil {
		t.Fatalf("add: %v", err)
	}

	mine, err := svc.ListByProvider(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Seaside Inn" {
		t.Fatalf("expected only owned hotels, got %+v", mine)
	}
}
