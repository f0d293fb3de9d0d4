package optimizer

import (
	"fmt"
	"strings"
)

// Strategy selects how subproblems are evaluated
type Strategy int

const (
	// TopDown recurses from week one and memoizes subproblems as they are reached
	TopDown Strategy = iota
	// BottomUp fills the memo table from the last week backwards before walking the plan
	BottomUp
)

func (s Strategy) String() string {
	switch s {
	case TopDown:
		return "top-down"
	case BottomUp:
		return "bottom-up"
	default:
		return "unknown"
	}
}

// ParseStrategy accepts the names produced by Strategy.String
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top-down", "topdown", "":
		return TopDown, nil
	case "bottom-up", "bottomup":
		return BottomUp, nil
	default:
		return TopDown, fmt.Errorf("invalid strategy: %s (expected: top-down or bottom-up)", s)
	}
}
