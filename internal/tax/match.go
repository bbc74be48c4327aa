package tax

import (
	"sort"
	"strings"
)

// Match specificity, most specific first.
const (
	matchNone = iota
	matchCountry
	matchState
	matchPostal
)

// specificity reports how precisely z matches addr, matchNone when it does not.
// A zone that names a state or postal codes only matches addresses that
// satisfy them.
func specificity(z Zone, addr Address) int {
	if !strings.EqualFold(z.Country, addr.Country) {
		return matchNone
	}
	level := matchCountry
	if z.State != "" {
		if !strings.EqualFold(z.State, addr.State) {
			return matchNone
		}
		level = matchState
	}
	if len(z.PostalCodes) > 0 {
		if !matchesPostal(z.PostalCodes, addr.PostalCode) {
			return matchNone
		}
		level = matchPostal
	}
	return level
}

// matchesPostal accepts exact codes and prefixes written as "1234*".
func matchesPostal(patterns []string, postal string) bool {
	if postal == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p), " ", ""))
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(postal, prefix) {
				return true
			}
			continue
		}
		if p == postal {
			return true
		}
	}
	return false
}

// Resolve returns the most specific zone matching addr. Ties go to the higher
// priority, then the lower code. It returns nil when nothing matches.
func Resolve(zones []Zone, addr Address) *Zone {
	addr = addr.Normalize()
	type candidate struct {
		zone  Zone
		level int
	}
	var matches []candidate
	for _, z := range zones {
		if level := specificity(z, addr); level != matchNone {
			matches = append(matches, candidate{zone: z, level: level})
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.level != b.level {
			return a.level > b.level
		}
		if a.zone.Priority != b.zone.Priority {
			return a.zone.Priority > b.zone.Priority
		}
		return a.zone.Code < b.zone.Code
	})
	best := matches[0].zone
	return &best
}
