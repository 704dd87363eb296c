package domain

// DefaultPage is the page number assumed when none is specified.
const DefaultPage = 1

// DefaultLimit is the page size assumed when none is specified.
const DefaultLimit = 20

// MaxLimit is the largest accepted page size.
const MaxLimit = 100

// Page holds page/limit pagination parameters for list operations.
type Page struct {
	Page  int
	Limit int
}

// Normalized returns the page with defaults filled in and the limit clamped
// to [1, MaxLimit].
func (p Page) Normalized() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	n := p.Normalized()
	return (n.Page - 1) * n.Limit
}

// PageCount returns the number of pages needed for total rows.
func (p Page) PageCount(total int64) int {
	if total <= 0 {
		return 0
	}
	limit := int64(p.Normalized().Limit)
	return int((total + limit - 1) / limit)
}
