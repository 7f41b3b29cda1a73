package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultSize is the standard page size when a size is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

// Params holds page/size inputs from controllers or services. Page is zero-based.
type Params struct {
	Page int
	Size int
}

// NormalizeSize enforces the default and maximum page sizes.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// Normalize returns a copy with a non-negative page and a bounded size.
func (p Params) Normalize() Params {
	page := p.Page
	if page < 0 {
		page = 0
	}
	return Params{Page: page, Size: NormalizeSize(p.Size)}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

// Limit returns the bounded page size.
func (p Params) Limit() int {
	return NormalizeSize(p.Size)
}

// Parse reads the raw page and size query values. Empty values fall back to defaults.
func Parse(rawPage, rawSize string) (Params, error) {
	var params Params
	if v := strings.TrimSpace(rawPage); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return Params{}, fmt.Errorf("page must be a non-negative integer")
		}
		params.Page = page
	}
	if v := strings.TrimSpace(rawSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return Params{}, fmt.Errorf("size must be a positive integer")
		}
		params.Size = size
	}
	return params.Normalize(), nil
}
