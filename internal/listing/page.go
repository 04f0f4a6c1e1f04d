// Package listing holds the pagination and sort rules of the activity table.
package listing

import (
	"errors"
	"strconv"
)

const (
	// PageSize is the number of activities shown per page.
	PageSize = 5
	// MinPage is the first page number.
	MinPage = 1
)

var ErrInvalidPage = errors.New("invalid page number requested")

// NumberOfPages returns how many pages count activities span.
// There is always at least one page, so page 1 is valid for an empty list.
func NumberOfPages(count int) int {
	if count <= 0 {
		return MinPage
	}
	return max(MinPage, (count+PageSize-1)/PageSize)
}

// ParsePageNum parses a page number path segment. Only base-10 integers are accepted.
func ParsePageNum(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsValidPageNum reports whether page lies in [MinPage, numberOfPages].
func IsValidPageNum(page, numberOfPages int) bool {
	return page >= MinPage && page <= numberOfPages
}

// RequirePage parses raw and checks it against the page count for count items.
func RequirePage(raw string, count int) (int, error) {
	page, ok := ParsePageNum(raw)
	if !ok || !IsValidPageNum(page, NumberOfPages(count)) {
		return 0, ErrInvalidPage
	}
	return page, nil
}

// Window returns the half-open index range [start, end) of page.
func Window(page int) (start, end int) {
	start = (page - 1) * PageSize
	return start, start + PageSize
}

// Page returns the items that belong on page.
func Page[T any](items []T, page int) []T {
	start, end := Window(page)
	if start >= len(items) {
		return nil
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageNumbers returns 1..numberOfPages for rendering page links.
func PageNumbers(numberOfPages int) []int {
	out := make([]int, numberOfPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
