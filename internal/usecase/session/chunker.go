package session

import "strings"

// Sentinels are literal "no value" artifacts of upstream serialization
// failures. Units equal to one of these are never displayed.
var Sentinels = []string{"undefined", "null"}

// Chunk splits raw on whitespace into the ordered units the emitter reveals,
// dropping empty units and sentinels. An empty result means the response had
// nothing to show.
func Chunk(raw string) []string {
	fields := strings.Fields(raw)
	units := fields[:0]
	for _, f := range fields {
		if isSentinel(f) {
			continue
		}
		units = append(units, f)
	}
	if len(units) == 0 {
		return nil
	}
	return units
}

func isSentinel(unit string) bool {
	for _, s := range Sentinels {
		if unit == s {
			return true
		}
	}
	return false
}
