// Package system provides the wall clock used to date URLs and checks.
package system

import (
	"time"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
)

// Clock implements analyzer.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current UTC calendar date.
func (c Clock) Today() time.Time {
	return analyzer.DateOf(c.Now())
}
