package gantt

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks a request rejected before any lookup runs
	ErrInvalidRequest = errors.New("invalid gantt request")
	// ErrFetchFailed matches every *FetchError
	ErrFetchFailed = errors.New("supply data fetch failed")
)

// FetchError reports which upstream lookup failed
type FetchError struct {
	Source string // bom, materials, purchase_requests, purchase_orders, mrp, inventory
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
