package entities

import "fmt"

// Headcount is the number of workers staffed in a given week
type Headcount int

// Diff returns the absolute difference between two headcounts
func (h Headcount) Diff(other Headcount) Headcount {
	if h > other {
		return h - other
	}
	return other - h
}

// Action represents the staffing change taken between two consecutive weeks
type Action int

const (
	Maintain Action = iota
	Hire
	LayOff
)

// ActionBetween classifies the move from previous to current headcount
func ActionBetween(previous, current Headcount) Action {
	switch {
	case current > previous:
		return Hire
	case current < previous:
		return LayOff
	default:
		return Maintain
	}
}

// String method for Action enum
func (a Action) String() string {
	switch a {
	case Maintain:
		return "Maintain"
	case Hire:
		return "Hire"
	case LayOff:
		return "LayOff"
	default:
		return "Unknown"
	}
}

// MarshalText renders the action in snake case for JSON and YAML output
func (a Action) MarshalText() ([]byte, error) {
	switch a {
	case Hire:
		return []byte("hire"), nil
	case LayOff:
		return []byte("lay_off"), nil
	default:
		return []byte("maintain"), nil
	}
}

// UnmarshalText parses the snake case form produced by MarshalText
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hire":
		*a = Hire
	case "lay_off":
		*a = LayOff
	case "maintain":
		*a = Maintain
	default:
		return &ValidationError{Field: "action", Reason: "unknown action: " + string(text)}
	}
	return nil
}

// Narrative returns the human readable decision for a change of the given size
func (a Action) Narrative(change Headcount) string {
	switch a {
	case Hire:
		return fmt.Sprintf("hire %d workers", change)
	case LayOff:
		return fmt.Sprintf("lay off %d workers", change)
	default:
		return "maintain current headcount"
	}
}
