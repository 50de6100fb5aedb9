package repositories

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Pagination bounds a list query
type Pagination struct {
	Limit  int
	Offset int
}

// Normalize clamps the limit to (0, MaxPageSize] and the offset to >= 0.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
