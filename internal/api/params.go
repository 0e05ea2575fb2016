package api

import "github.com/pkg/errors"

// Pagination contains resolved pagination indices.
type Pagination struct {
	Total      int
	StartIndex int // Inclusive
	EndIndex   int // Exclusive
}

// Paginate calculates pagination values. Negative offsets are counted from the end; a zero
// limit selects everything after the offset.
func Paginate(total, offset, limit int) (*Pagination, error) {
	if limit < 0 {
		return nil, errors.New("limit must not be negative")
	}
	startIndex := offset
	if offset < 0 {
		startIndex = total + offset
	}
	if !(0 <= startIndex && startIndex <= total) {
		return nil, errors.New("offset out of bounds")
	}
	endIndex := startIndex + limit
	if limit == 0 || endIndex > total {
		endIndex = total
	}

	return &Pagination{Total: total, StartIndex: startIndex, EndIndex: endIndex}, nil
}
