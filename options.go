package headinject

import (
	"errors"
	"fmt"
)

// ErrInvalidBufferSize is returned when the copy buffer size is not positive.
var ErrInvalidBufferSize = errors.New("bufferSize must be greater than 0")

// DefaultBufferSize is the default read buffer size for Inject (32 KiB).
const DefaultBufferSize = 32 * 1024

// Option is a function that configures Inject.
type Option func(*config) error

// config holds the configuration for Inject.
type config struct {
	bufferSize int
}

// WithBufferSize sets the size of the buffer used to read the source.
func WithBufferSize(size int) Option {
	return func(c *config) error {
		if size <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidBufferSize, size)
		}

		c.bufferSize = size

		return nil
	}
}
