// internal/domain/entity/errors.go
package entity

import (
	"fmt"
)

// MalformedOfferError reports a scraped record that cannot be normalized.
// The offer is skipped; the task continues.
type MalformedOfferError struct {
	Field  string
	Reason string
}

func (e *MalformedOfferError) Error() string {
	return fmt.Sprintf("malformed offer: %s: %s", e.Field, e.Reason)
}

// SearchError reports a failed search against the scraping collaborator.
// The task is skipped and counts toward the consecutive-failure ceiling.
type SearchError struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Err           error
}

func (e *SearchError) Error() string {
	if e.ReturnDate != "" {
		return fmt.Sprintf("search %s-%s %s/%s failed: %v",
			e.Origin, e.Destination, e.DepartureDate, e.ReturnDate, e.Err)
	}
	return fmt.Sprintf("search %s-%s %s failed: %v",
		e.Origin, e.Destination, e.DepartureDate, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// HistoryLoadError reports an unreadable or corrupt price history backing
// file. Fatal at startup: starting from an empty history would flag every
// observed price as a deal.
type HistoryLoadError struct {
	Path string
	Err  error
}

func (e *HistoryLoadError) Error() string {
	return fmt.Sprintf("cannot load price history from %s: %v", e.Path, e.Err)
}

func (e *HistoryLoadError) Unwrap() error {
	return e.Err
}

// NotifyError reports a notifier failure. Logged by the dispatcher, never
// retried by the core.
type NotifyError struct {
	Notifier string
	Err      error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notifier %s failed: %v", e.Notifier, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}
