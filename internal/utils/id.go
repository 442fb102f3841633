// Package utils provides small, dependency-free helpers shared across the
// HTTP layer.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadID reports a path segment that is not a positive decimal integer.
var ErrBadID = errors.New("id must be a positive integer")

// ParseID parses a numeric resource id from a path parameter. Rule ids are
// auto-increment integers starting at 1, so zero, negatives, and non-numeric
// input are all rejected.
func ParseID(s string) (uint, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, ErrBadID
	}
	return uint(n), nil
}
