package domain

import (
	"fmt"
	"strings"
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// BookingSortFields lists the booking attributes a listing may be ordered by.
var BookingSortFields = []string{"booking_date", "seat_count", "created_at"}

// SortParams is a single-column ordering.
type SortParams struct {
	Field string
	Desc  bool
}

// DefaultBookingSort orders newest booking dates first.
var DefaultBookingSort = SortParams{Field: "booking_date", Desc: true}

// ParseBookingSort parses "field" or "field,asc|desc".
// An empty string yields DefaultBookingSort.
func ParseBookingSort(raw string) (SortParams, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBookingSort, nil
	}
	field, dir, _ := strings.Cut(raw, ",")
	s := SortParams{Field: strings.ToLower(strings.TrimSpace(field))}

	known := false
	for _, f := range BookingSortFields {
		if f == s.Field {
			known = true
			break
		}
	}
	if !known {
		return SortParams{}, fmt.Errorf("%w: cannot sort by %q", ErrValidation, field)
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		s.Desc = true
	default:
		return SortParams{}, fmt.Errorf("%w: sort direction must be asc or desc", ErrValidation)
	}
	return s, nil
}
