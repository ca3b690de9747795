package services

import (
	"regexp"

	"github.com/Renal37/fuel-orders/internal/models"
)

var icaoPattern = regexp.MustCompile(`^[A-Z]{4}$`)

// ValidateFilter rejects malformed filters instead of coercing them.
func ValidateFilter(filter models.OrderFilter) error {
	verr := &ValidationError{}

	if filter.AirportIcao != "" && !icaoPattern.MatchString(filter.AirportIcao) {
		verr.add("airportIcao", "must be four uppercase letters")
	}

	if filter.Status != nil && !filter.Status.IsKnown() {
		verr.add("status", "is not a known order status")
	}

	return verr.errOrNil()
}

func ValidatePageRequest(page models.PageRequest) error {
	verr := &ValidationError{}

	if page.Page < 0 {
		verr.add("page", "must not be negative")
	}

	if page.Size <= 0 {
		verr.add("size", "must be positive")
	}

	return verr.errOrNil()
}

// OrderQuery tracks the filter and position of a paged order listing.
// It never caches results: every change that returns true needs a fresh query.
type OrderQuery struct {
	filter     models.OrderFilter
	page       int
	size       int
	totalPages int
	total      int
}

func NewOrderQuery(size int) *OrderQuery {
	if size <= 0 {
		size = models.DefaultPageSize
	}
	return &OrderQuery{size: size}
}

// SetFilter replaces the filter and returns to the first page.
func (q *OrderQuery) SetFilter(filter models.OrderFilter) {
	q.filter = filter
	q.page = 0
}

// SetSize changes the page size and returns to the first page.
func (q *OrderQuery) SetSize(size int) error {
	if err := ValidatePageRequest(models.PageRequest{Size: size}); err != nil {
		return err
	}

	q.size = size
	q.page = 0
	return nil
}

// Next moves forward when a later page exists.
func (q *OrderQuery) Next() bool {
	if q.page+1 >= q.totalPages {
		return false
	}
	q.page++
	return true
}

// Prev moves back unless already on the first page.
func (q *OrderQuery) Prev() bool {
	if q.page <= 0 {
		return false
	}
	q.page--
	return true
}

func (q *OrderQuery) Filter() models.OrderFilter {
	return q.filter
}

func (q *OrderQuery) Request() models.PageRequest {
	return models.PageRequest{Page: q.page, Size: q.size}
}

// Apply records the totals reported with the last fetched page.
func (q *OrderQuery) Apply(page *models.Page[models.Order]) {
	if page == nil {
		return
	}
	q.totalPages = page.TotalPages
	q.total = page.TotalElements
}

func (q *OrderQuery) TotalPages() int {
	return q.totalPages
}

func (q *OrderQuery) TotalElements() int {
	return q.total
}
