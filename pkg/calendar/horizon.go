package calendar

import (
	"fmt"
	"time"

	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/errors"
)

// Horizon is a closed year interval [Start, End].
type Horizon struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// DefaultHorizon returns the fixed analysis range 1947 through 2025.
func DefaultHorizon() Horizon {
	return Horizon{Start: constants.HorizonStart, End: constants.HorizonEnd}
}

// NewHorizon returns a validated horizon.
func NewHorizon(start, end int) (Horizon, error) {
	h := Horizon{Start: start, End: end}
	if err := h.Validate(); err != nil {
		return Horizon{}, err
	}
	return h, nil
}

// Validate checks that the interval is not inverted.
func (h Horizon) Validate() error {
	if h.Start > h.End {
		return &errors.ValidationError{
			Field:   "horizon",
			Value:   h,
			Message: fmt.Sprintf("start year %d is after end year %d", h.Start, h.End),
		}
	}
	return nil
}

// Len returns the number of years in the horizon.
func (h Horizon) Len() int {
	if h.Start > h.End {
		return 0
	}
	return h.End - h.Start + 1
}

// Contains reports whether year falls inside the horizon.
func (h Horizon) Contains(year int) bool {
	return year >= h.Start && year <= h.End
}

// Years returns every year of the horizon in ascending order.
func (h Horizon) Years() []int {
	years := make([]int, 0, h.Len())
	for y := h.Start; y <= h.End; y++ {
		years = append(years, y)
	}
	return years
}

// String formats the horizon as "start-end".
func (h Horizon) String() string {
	return fmt.Sprintf("%d-%d", h.Start, h.End)
}

// Anchor returns the synthetic date that stands for a whole year on the
// output time axis: April 12 of that year, UTC.
func Anchor(year int) time.Time {
	return time.Date(year, constants.AnchorMonth, constants.AnchorDay, 0, 0, 0, 0, time.UTC)
}
