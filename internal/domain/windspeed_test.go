package domain

import "testing"

func TestNewWindSpeed(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{name: "zero", value: 0},
		{name: "positive", value: 12.7},
		{name: "negative", value: -0.1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wind, err := NewWindSpeed(tt.value)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewWindSpeed(%v) succeeded, want error", tt.value)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewWindSpeed(%v) failed: %v", tt.value, err)
			}
			if wind.Value() != tt.value {
				t.Errorf("Value() = %v, want %v", wind.Value(), tt.value)
			}
		})
	}
}
