package domain

// Temperature bundles the current reading with the daily maximum and
// minimum, all in degrees Celsius. Current is not required to fall inside
// [Minimum, Maximum].
type Temperature struct {
	current float64
	maximum float64
	minimum float64
}

// NewTemperature validates and constructs a Temperature value.
func NewTemperature(current, maximum, minimum float64) (Temperature, error) {
	if maximum < minimum {
		return Temperature{}, validationErrorf("temperature", "maximum (%v) cannot be lower than minimum (%v)", maximum, minimum)
	}
	return Temperature{current: current, maximum: maximum, minimum: minimum}, nil
}

func (t Temperature) Current() float64 { return t.current }

func (t Temperature) Maximum() float64 { return t.maximum }

func (t Temperature) Minimum() float64 { return t.minimum }
