package domain

import "testing"

func TestNewTemperature(t *testing.T) {
	tests := []struct {
		name                      string
		current, maximum, minimum float64
		wantErr                   bool
	}{
		{name: "max above min", current: 15, maximum: 20, minimum: 10},
		{name: "max equals min", current: 10, maximum: 10, minimum: 10},
		{name: "max equals min with current outside", current: 99, maximum: 10, minimum: 10},
		{name: "current below min is allowed", current: -5, maximum: 20, minimum: 10},
		{name: "current above max is allowed", current: 30, maximum: 20, minimum: 10},
		{name: "negative range", current: -15, maximum: -10, minimum: -20},
		{name: "max below min", current: 15, maximum: 10, minimum: 20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, err := NewTemperature(tt.current, tt.maximum, tt.minimum)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewTemperature(%v, %v, %v) succeeded, want error", tt.current, tt.maximum, tt.minimum)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewTemperature(%v, %v, %v) failed: %v", tt.current, tt.maximum, tt.minimum, err)
			}
			if temp.Current() != tt.current {
				t.Errorf("Current() = %v, want %v", temp.Current(), tt.current)
			}
			if temp.Maximum() != tt.maximum {
				t.Errorf("Maximum() = %v, want %v", temp.Maximum(), tt.maximum)
			}
			if temp.Minimum() != tt.minimum {
				t.Errorf("Minimum() = %v, want %v", temp.Minimum(), tt.minimum)
			}
		})
	}
}
