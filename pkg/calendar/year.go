// Package calendar normalizes the mixed year representations found in mission
// metadata and the free-form dates of the incident log.
//
// A year field is one of three things: a known year, the "ongoing" sentinel, or
// unknown. Ongoing is resolved to the horizon's last year exactly once, at
// normalization time; everything downstream only sees known or unknown years.
package calendar

import (
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/peacekeeping/pkg/constants"
)

// Kind tags the representation held by a Year.
type Kind uint8

const (
	// Unknown is a missing or unparsable year.
	Unknown Kind = iota
	// Known is a concrete calendar year.
	Known
	// Ongoing is a mission that has not ended.
	Ongoing
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Known:
		return "known"
	case Ongoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// Year is a nullable calendar year with an explicit ongoing state.
// The zero value is Unknown.
type Year struct {
	kind  Kind
	value int
}

// KnownYear returns a concrete year.
func KnownYear(v int) Year {
	return Year{kind: Known, value: v}
}

// OngoingYear returns the ongoing sentinel.
func OngoingYear() Year {
	return Year{kind: Ongoing}
}

// UnknownYear returns a missing year.
func UnknownYear() Year {
	return Year{}
}

// Kind reports which representation y holds.
func (y Year) Kind() Kind {
	return y.kind
}

// Value returns the year and true when y is Known.
func (y Year) Value() (int, bool) {
	if y.kind != Known {
		return 0, false
	}
	return y.value, true
}

// IsKnown reports whether y holds a concrete year.
func (y Year) IsKnown() bool {
	return y.kind == Known
}

// Resolve replaces Ongoing with the given last year. Known and Unknown
// years are returned unchanged, so Resolve is idempotent.
func (y Year) Resolve(last int) Year {
	if y.kind == Ongoing {
		return KnownYear(last)
	}
	return y
}

// String formats a known year as digits, ongoing as the ongoing token,
// and unknown as the empty string (an empty table cell).
func (y Year) String() string {
	switch y.kind {
	case Known:
		return strconv.Itoa(y.value)
	case Ongoing:
		return constants.OngoingToken
	default:
		return ""
	}
}

// ParseYear parses a numeric year. Surrounding whitespace is ignored and
// integral decimals such as "2001.0" are accepted, since spreadsheet exports
// write whole numbers that way. Anything else is Unknown.
func ParseYear(raw string) Year {
	s := strings.TrimSpace(raw)
	if s == "" {
		return UnknownYear()
	}
	if v, err := strconv.Atoi(s); err == nil {
		return KnownYear(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return UnknownYear()
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return UnknownYear()
	}
	return KnownYear(int(f))
}

// ParseStartYear parses a raw start-year field.
func ParseStartYear(raw string) Year {
	return ParseYear(raw)
}

// ParseEndYear parses a raw end-year field. Only a value that is exactly the
// ongoing token, in any letter case, is Ongoing; "still ongoing" or " ongoing"
// are Unknown like any other non-numeric text.
func ParseEndYear(raw string) Year {
	if strings.EqualFold(raw, constants.OngoingToken) {
		return OngoingYear()
	}
	return ParseYear(raw)
}
