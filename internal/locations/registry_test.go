package locations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/store"
)

type fakeStore struct {
	byCoords map[domain.Coordinates]*domain.Location
	nextID   int64

	insertErr   error
	insertCalls int
	touchCalls  int
	// When set, the first insert fails with ErrDuplicate and this row
	// appears, simulating a concurrent writer winning the race.
	racedRow *domain.Location
}

func newFakeStore() *fakeStore {
	return &fakeStore{byCoords: make(map[domain.Coordinates]*domain.Location)}
}

func (f *fakeStore) InsertLocation(_ context.Context, loc *domain.Location) error {
	f.insertCalls++
	if f.racedRow != nil {
		f.byCoords[f.racedRow.Coordinates()] = f.racedRow
		f.racedRow = nil
		return store.ErrDuplicate
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.byCoords[loc.Coordinates()]; ok {
		return store.ErrDuplicate
	}
	f.nextID++
	loc.SetID(f.nextID)
	f.byCoords[loc.Coordinates()] = loc
	return nil
}

func (f *fakeStore) FindLocationByCoordinates(_ context.Context, coords domain.Coordinates) (*domain.Location, error) {
	loc, ok := f.byCoords[coords]
	if !ok {
		return nil, store.ErrNotFound
	}
	return loc, nil
}

func (f *fakeStore) TouchLocation(_ context.Context, id int64, _ time.Time) error {
	f.touchCalls++
	for _, loc := range f.byCoords {
		if loc.ID() == id {
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeleteLocation(_ context.Context, id int64) error {
	for coords, loc := range f.byCoords {
		if loc.ID() == id {
			delete(f.byCoords, coords)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) ListLocations(context.Context) ([]*domain.Location, error) {
	var locations []*domain.Location
	for _, loc := range f.byCoords {
		locations = append(locations, loc)
	}
	return locations, nil
}

func mustCoords(t *testing.T, lat, lon float64) domain.Coordinates {
	t.Helper()
	coords, err := domain.NewCoordinates(lat, lon)
	if err != nil {
		t.Fatalf("NewCoordinates failed: %v", err)
	}
	return coords
}

func newTestRegistry(st *fakeStore) *Registry {
	return NewRegistry(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterOrTouchCreatesNewLocation(t *testing.T) {
	st := newFakeStore()
	reg := newTestRegistry(st)

	coords := mustCoords(t, 52.2297, 21.0122)
	loc, created, err := reg.RegisterOrTouch(context.Background(), coords, "Warsaw")
	if err != nil {
		t.Fatalf("RegisterOrTouch failed: %v", err)
	}

	if !created {
		t.Error("created = false, want true for a new coordinate pair")
	}
	if loc.ID() == 0 {
		t.Error("new location has no id")
	}
	if loc.Name() != "Warsaw" {
		t.Errorf("name = %q, want Warsaw", loc.Name())
	}
	if st.touchCalls != 0 {
		t.Errorf("touch called %d times on create, want 0", st.touchCalls)
	}
}

func TestRegisterOrTouchReturnsExisting(t *testing.T) {
	st := newFakeStore()
	reg := newTestRegistry(st)
	ctx := context.Background()

	coords := mustCoords(t, 52.2297, 21.0122)
	first, _, err := reg.RegisterOrTouch(ctx, coords, "Warsaw")
	if err != nil {
		t.Fatalf("RegisterOrTouch failed: %v", err)
	}
	before := first.LastUsedAt()

	time.Sleep(2 * time.Millisecond)
	second, created, err := reg.RegisterOrTouch(ctx, coords, "ignored name")
	if err != nil {
		t.Fatalf("RegisterOrTouch failed: %v", err)
	}

	if created {
		t.Error("created = true, want false for existing coordinates")
	}
	if second.ID() != first.ID() {
		t.Errorf("id = %d, want %d", second.ID(), first.ID())
	}
	if second.Name() != "Warsaw" {
		t.Errorf("name = %q, want the original Warsaw", second.Name())
	}
	if !second.LastUsedAt().After(before) {
		t.Error("usage timestamp was not bumped")
	}
	if st.touchCalls != 1 {
		t.Errorf("touch called %d times, want 1", st.touchCalls)
	}
	if st.insertCalls != 1 {
		t.Errorf("insert called %d times, want 1", st.insertCalls)
	}
}

func TestRegisterOrTouchRecoversFromInsertRace(t *testing.T) {
	st := newFakeStore()
	reg := newTestRegistry(st)

	coords := mustCoords(t, 51.5074, -0.1278)
	winner, err := domain.NewLocation(coords, "London")
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}
	winner.SetID(7)
	st.racedRow = winner

	loc, created, err := reg.RegisterOrTouch(context.Background(), coords, "London")
	if err != nil {
		t.Fatalf("RegisterOrTouch failed: %v", err)
	}

	if created {
		t.Error("created = true, want false when losing the insert race")
	}
	if loc.ID() != 7 {
		t.Errorf("id = %d, want the winner's id 7", loc.ID())
	}
	if st.touchCalls != 1 {
		t.Errorf("touch called %d times, want 1 for the re-read row", st.touchCalls)
	}
}

func TestRegisterOrTouchPropagatesInsertError(t *testing.T) {
	st := newFakeStore()
	st.insertErr = errors.New("disk full")
	reg := newTestRegistry(st)

	_, _, err := reg.RegisterOrTouch(context.Background(), mustCoords(t, 1, 2), "")
	if err == nil || !errors.Is(err, st.insertErr) {
		t.Fatalf("error = %v, want wrapped disk full", err)
	}
}

func TestFindByCoordinates(t *testing.T) {
	st := newFakeStore()
	reg := newTestRegistry(st)
	ctx := context.Background()

	coords := mustCoords(t, 40.7128, -74.0060)
	created, _, err := reg.RegisterOrTouch(ctx, coords, "New York")
	if err != nil {
		t.Fatalf("RegisterOrTouch failed: %v", err)
	}

	got, err := reg.FindByCoordinates(ctx, coords)
	if err != nil {
		t.Fatalf("FindByCoordinates failed: %v", err)
	}
	if got.ID() != created.ID() {
		t.Errorf("id = %d, want %d", got.ID(), created.ID())
	}

	if _, err := reg.FindByCoordinates(ctx, mustCoords(t, 0, 0)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want store.ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	st := newFakeStore()
	reg := newTestRegistry(st)
	ctx := context.Background()

	loc, _, err := reg.RegisterOrTouch(ctx, mustCoords(t, 1, 2), "")
	if err != nil {
		t.Fatalf("RegisterOrTouch failed: %v", err)
	}

	if err := reg.Delete(ctx, loc.ID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := reg.Delete(ctx, loc.ID()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete error = %v, want store.ErrNotFound", err)
	}
}
