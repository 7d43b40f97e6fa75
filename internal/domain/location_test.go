package domain

import (
	"strings"
	"testing"
	"time"
)

func mustCoords(t *testing.T, lat, lon float64) Coordinates {
	t.Helper()
	coords, err := NewCoordinates(lat, lon)
	if err != nil {
		t.Fatalf("NewCoordinates(%v, %v) failed: %v", lat, lon, err)
	}
	return coords
}

func TestNewLocation(t *testing.T) {
	before := time.Now().UTC()
	loc, err := NewLocation(mustCoords(t, 48.8566, 2.3522), "Paris")
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}
	after := time.Now().UTC()

	if loc.ID() != 0 {
		t.Errorf("ID() = %d, want 0 before persistence", loc.ID())
	}
	if loc.Name() != "Paris" {
		t.Errorf("Name() = %q, want %q", loc.Name(), "Paris")
	}
	if loc.CreatedAt().Before(before) || loc.CreatedAt().After(after) {
		t.Errorf("CreatedAt() = %v, want within [%v, %v]", loc.CreatedAt(), before, after)
	}
	if !loc.LastUsedAt().Equal(loc.CreatedAt()) {
		t.Errorf("LastUsedAt() = %v, want equal to CreatedAt %v", loc.LastUsedAt(), loc.CreatedAt())
	}
}

func TestNewLocationWithoutName(t *testing.T) {
	loc, err := NewLocation(mustCoords(t, 0, 0), "")
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}
	if loc.Name() != "" {
		t.Errorf("Name() = %q, want empty", loc.Name())
	}
}

func TestNewLocationRejectsOverlongName(t *testing.T) {
	_, err := NewLocation(mustCoords(t, 0, 0), strings.Repeat("x", MaxLocationNameLength+1))
	if err == nil {
		t.Fatal("NewLocation with overlong name succeeded, want error")
	}
}

func TestLocationUpdateUsage(t *testing.T) {
	loc, err := NewLocation(mustCoords(t, 10, 20), "")
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}

	previous := loc.LastUsedAt()
	time.Sleep(2 * time.Millisecond)
	loc.UpdateUsage()

	if !loc.LastUsedAt().After(previous) {
		t.Errorf("LastUsedAt() = %v, want after %v", loc.LastUsedAt(), previous)
	}
	if !loc.CreatedAt().Equal(previous) {
		t.Errorf("UpdateUsage must not change CreatedAt: got %v, want %v", loc.CreatedAt(), previous)
	}
}

func TestLocationSetName(t *testing.T) {
	tests := []struct {
		name     string
		newName  string
		wantErr  bool
		wantName string
	}{
		{name: "valid name", newName: "Warsaw", wantName: "Warsaw"},
		{name: "empty rejected", newName: "", wantErr: true},
		{name: "whitespace rejected", newName: "   \t", wantErr: true},
		{name: "overlong rejected", newName: strings.Repeat("a", MaxLocationNameLength+1), wantErr: true},
		{name: "max length allowed", newName: strings.Repeat("a", MaxLocationNameLength), wantName: strings.Repeat("a", MaxLocationNameLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewLocation(mustCoords(t, 1, 2), "original")
			if err != nil {
				t.Fatalf("NewLocation failed: %v", err)
			}

			err = loc.SetName(tt.newName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SetName(%q) succeeded, want error", tt.newName)
				}
				if loc.Name() != "original" {
					t.Errorf("failed SetName must not change the name, got %q", loc.Name())
				}
				return
			}

			if err != nil {
				t.Fatalf("SetName(%q) failed: %v", tt.newName, err)
			}
			if loc.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", loc.Name(), tt.wantName)
			}
		})
	}
}

func TestLocationClearName(t *testing.T) {
	loc, err := NewLocation(mustCoords(t, 1, 2), "Warsaw")
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}

	loc.ClearName()
	if loc.Name() != "" {
		t.Errorf("Name() = %q after ClearName, want empty", loc.Name())
	}
}
