package projections

import (
	"sort"
	"strconv"
	"strings"
)

// Option is the JSON shape select widgets consume. Value carries the numeric
// SRID as a string so form payloads stay uniform.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func Search(systems []System, query string, limit int, opts Options) []System {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(systems) <= limit {
				return append([]System{}, systems...)
			}
			return append([]System{}, systems[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	q = strings.TrimPrefix(q, "epsg:")
	matches := make([]matchedSystem, 0, 32)
	for _, system := range systems {
		code := strconv.Itoa(system.SRID)
		lowerName := strings.ToLower(system.Name)
		if !strings.Contains(lowerName, q) && !strings.Contains(code, q) {
			continue
		}
		matches = append(matches, matchedSystem{
			system:   system,
			isPrefix: strings.HasPrefix(lowerName, q) || strings.HasPrefix(code, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].system.SRID < matches[j].system.SRID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]System, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.system)
	}
	return out
}

func SearchOptions(systems []System, query string, limit int, opts Options) []Option {
	results := Search(systems, query, limit, opts)
	if len(results) == 0 {
		return nil
	}

	out := make([]Option, 0, len(results))
	for _, system := range results {
		out = append(out, Option{
			Value: strconv.Itoa(system.SRID),
			Label: system.Name + " (" + system.Code() + ")",
		})
	}
	return out
}

type matchedSystem struct {
	system   System
	isPrefix bool
}
