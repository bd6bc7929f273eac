package cache

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key derives a cache key from an operation name and the full set of
// meaningful request parameters. The parts are hashed so keys stay short and
// free of characters the store backends might mangle, while the operation
// name stays readable for debugging.
func Key(op string, parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		// Separator prevents ("ab","c") from colliding with ("a","bc").
		_, _ = h.WriteString(strings.ToUpper(strings.TrimSpace(p)))
		_, _ = h.WriteString("\x1f")
	}
	return op + ":" + strconv.FormatUint(h.Sum64(), 16)
}
