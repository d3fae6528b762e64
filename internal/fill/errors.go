package fill

import "errors"

var (
	// ErrInvalidSizeSuffix is returned for size tokens whose unit is not
	// one of K, M, G, T, P, E, Z, Y (any case) or that carry trailing
	// characters.
	ErrInvalidSizeSuffix = errors.New("invalid size suffix (supported: K, M, G, T, P, E, Z, Y)")

	// ErrInvalidBlockSize is returned when the write block size resolves
	// to zero.
	ErrInvalidBlockSize = errors.New("block size must be greater than zero")

	// ErrUnsupportedTarget is returned when the target path is neither a
	// directory nor a regular file.
	ErrUnsupportedTarget = errors.New("target is neither a directory nor a regular file")
)
