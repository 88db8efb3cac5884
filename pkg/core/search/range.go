package search

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive span of player counts
type Range struct {
	Min int
	Max int
}

func (r Range) String() string {
	return fmt.Sprintf("%d,%d", r.Min, r.Max)
}

// Values returns every count in the range in ascending order
func (r Range) Values() []int {
	if r.Max < r.Min {
		return nil
	}
	values := make([]int, 0, r.Max-r.Min+1)
	for v := r.Min; v <= r.Max; v++ {
		values = append(values, v)
	}
	return values
}

// ParseError reports a malformed min,max range
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Input, e.Reason)
}

// ParseRange reads "min,max": two non-negative integers, one comma, no whitespace
func ParseRange(s string) (Range, error) {
	if strings.ContainsAny(s, " \t\r\n") {
		return Range{}, &ParseError{Input: s, Reason: "must not contain whitespace"}
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Range{}, &ParseError{Input: s, Reason: "must be two integers separated by one comma"}
	}

	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return Range{}, &ParseError{Input: s, Reason: fmt.Sprintf("min %q is not an integer", parts[0])}
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil {
		return Range{}, &ParseError{Input: s, Reason: fmt.Sprintf("max %q is not an integer", parts[1])}
	}

	if lo < 0 || hi < 0 {
		return Range{}, &ParseError{Input: s, Reason: "counts must not be negative"}
	}
	if hi < lo {
		return Range{}, &ParseError{Input: s, Reason: "min is greater than max"}
	}

	return Range{Min: lo, Max: hi}, nil
}
