package fill

import (
	"fmt"
	"strconv"
)

// sizeSuffixes maps a lowercased unit letter to its exponent of 1024.
var sizeSuffixes = map[byte]int{
	'k': 1, // Kibibytes
	'm': 2, // Mebibytes
	'g': 3, // Gibibytes
	't': 4, // Tebibytes
	'p': 5, // Pebibytes
	'e': 6, // Exbibytes
	'z': 7, // Zebibytes
	'y': 8, // Yobibytes
}

// ParseSize parses a human-readable size token (800K, 32M, 10G, ...)
// into a byte count. A token without a suffix is a raw byte count; the
// suffix letters are case-insensitive powers of 1024. A missing digit
// run parses as zero.
func ParseSize(token string) (uint64, error) {
	i := 0
	for i < len(token) && token[i] >= '0' && token[i] <= '9' {
		i++
	}

	var size uint64
	if i > 0 {
		v, err := strconv.ParseUint(token[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size %q: %w", token, err)
		}
		size = v
	}

	rest := token[i:]
	switch len(rest) {
	case 0:
		return size, nil
	case 1:
		exp, ok := sizeSuffixes[rest[0]|0x20]
		if !ok {
			return 0, fmt.Errorf("size %q: %w", token, ErrInvalidSizeSuffix)
		}
		for k := 0; k < exp; k++ {
			size *= 1024
		}
		return size, nil
	default:
		return 0, fmt.Errorf("size %q: %w", token, ErrInvalidSizeSuffix)
	}
}
