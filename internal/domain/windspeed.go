package domain

// WindSpeed is a non-negative wind speed in km/h.
type WindSpeed struct {
	value float64
}

// NewWindSpeed validates and constructs a WindSpeed value.
func NewWindSpeed(value float64) (WindSpeed, error) {
	if value < 0 {
		return WindSpeed{}, validationErrorf("wind speed", "cannot be negative, got %v", value)
	}
	return WindSpeed{value: value}, nil
}

func (w WindSpeed) Value() float64 { return w.value }
