package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/broai/internal/types"
)

// MappingError lists why a column mapping cannot be used yet.
type MappingError struct {
	Problems []string
}

func (e *MappingError) Error() string {
	return "incomplete mapping: " + strings.Join(e.Problems, "; ")
}

// CheckMapping reports whether mapping is complete for the given source
// columns:
//   - every source column has a non-empty target
//   - every target is MappingIgnore or a key of the template
//   - no template key is targeted twice
//   - every required template key is targeted
//
// It returns nil for a complete mapping and a *MappingError otherwise.
func CheckMapping(tpl Template, columns []string, mapping types.ColumnMapping) error {
	if mapping == nil {
		return &MappingError{Problems: []string{"no mappings set"}}
	}

	var problems []string
	claimedBy := make(map[string]string, len(mapping))

	for _, src := range columns {
		target, ok := mapping[src]
		target = strings.TrimSpace(target)
		if !ok || target == "" {
			problems = append(problems, fmt.Sprintf("column %q has no target", src))
			continue
		}
		if target == types.MappingIgnore {
			continue
		}
		if _, known := tpl.Column(target); !known {
			problems = append(problems, fmt.Sprintf("column %q maps to unknown field %q", src, target))
			continue
		}
		if prev, dup := claimedBy[target]; dup {
			problems = append(problems, fmt.Sprintf("field %q is mapped from both %q and %q", target, prev, src))
			continue
		}
		claimedBy[target] = src
	}

	var missing []string
	for _, key := range tpl.RequiredKeys() {
		if _, ok := claimedBy[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, "required fields not mapped: "+strings.Join(missing, ", "))
	}

	if len(problems) > 0 {
		return &MappingError{Problems: problems}
	}
	return nil
}
