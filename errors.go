package countries

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-countries/internal/loader"
)

// NotFoundError reports a missing dataset file or asset. It wraps
// fs.ErrNotExist.
type NotFoundError = loader.NotFoundError

// ParseError reports a dataset file that is not well formed JSON.
type ParseError = loader.ParseError

var (
	// ErrUnknownOperation is returned by Call for names it cannot dispatch.
	ErrUnknownOperation = errors.New("countries: unknown operation")
	// ErrInvalidArgument reports a malformed code or argument list.
	ErrInvalidArgument = errors.New("countries: invalid argument")
	// ErrUnknownCountry reports a code missing from the country dataset.
	ErrUnknownCountry = errors.New("countries: unknown country")
)

// DataLoadError reports that the mandatory country dataset could not be
// loaded. New fails with it; the repository is unusable without the data.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("countries: load %q: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
