package engine

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// ParseOvers splits an overs string ("4.3") into completed overs and
// legal balls in the current over. Malformed state is reset to 0.0 and
// logged as a recoverable anomaly rather than crashing; this is a
// documented tolerance, not a correctness guarantee.
func ParseOvers(s string) (completed, balls int) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		log.Printf("[engine] malformed overs string %q, resetting to 0.0", s)
		return 0, 0
	}
	c, err1 := strconv.Atoi(parts[0])
	b, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || c < 0 || b < 0 || b > 5 {
		log.Printf("[engine] malformed overs string %q, resetting to 0.0", s)
		return 0, 0
	}
	return c, b
}

// formatOvers renders completed overs and balls as "c.b"
func formatOvers(completed, balls int) string {
	return fmt.Sprintf("%d.%d", completed, balls)
}
