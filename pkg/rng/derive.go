package rng

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// DeriveSeed folds the textual form of each part into base, producing a seed
// for an independent stream. The same base and parts always give the same
// seed; part order matters.
func DeriveSeed(base uint32, parts ...any) uint32 {
	hash := nonZero(base)
	for _, part := range parts {
		for _, code := range utf16.Encode([]rune(partString(part))) {
			hash ^= (hash << 5) + (hash >> 2) + uint32(code)
		}
	}
	return nonZero(hash)
}

func partString(part any) string {
	switch v := part.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
