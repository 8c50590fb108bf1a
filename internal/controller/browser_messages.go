package controller

import (
	"time"

	m "github.com/mouse-blink/debugrun/model"
)

// tickMsg drives the scroll animation in the failure browser.
type tickMsg time.Time

// failureItem adapts a failure record to the list widget.
type failureItem struct {
	failure m.Failure
}

// FilterValue implements list.Item so typing in the filter matches
// test names and panic text.
func (i failureItem) FilterValue() string {
	return i.failure.Test + " " + i.failure.Err
}
