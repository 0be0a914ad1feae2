package reconcile

import (
	"errors"
	"strings"
)

// ErrEmptyUpload indicates that no usable column labels survived filtering.
var ErrEmptyUpload = errors.New("no valid columns in upload")

// ColumnSet is the cleaned view of an upload's header row. Columns keeps the
// surviving labels in their original relative order; Dropped records what
// filtering removed (placeholders, blanks, duplicates) for reporting.
type ColumnSet struct {
	Columns []string
	Dropped []string
}

// placeholder labels emitted by spreadsheet tools for unlabeled columns.
var placeholderLabels = map[string]struct{}{
	"":        {},
	"nan":     {},
	"none":    {},
	"unnamed": {},
}

func isPlaceholder(label string) bool {
	lower := strings.ToLower(strings.TrimSpace(label))
	if _, ok := placeholderLabels[lower]; ok {
		return true
	}
	// Synthetic positional names like "Unnamed: 4" or "Unnamed_4".
	return strings.HasPrefix(lower, "unnamed:") || strings.HasPrefix(lower, "unnamed_")
}

// Normalize filters and trims raw header labels. Placeholder labels and
// whitespace-only labels are dropped; duplicates keep the first occurrence.
// The result is stable: normalizing an already-normalized set is a no-op.
func Normalize(raw []string) ColumnSet {
	set := ColumnSet{}
	seen := make(map[string]struct{}, len(raw))
	for _, label := range raw {
		if isPlaceholder(label) {
			set.Dropped = append(set.Dropped, label)
			continue
		}
		trimmed := strings.TrimSpace(label)
		if _, dup := seen[trimmed]; dup {
			set.Dropped = append(set.Dropped, label)
			continue
		}
		seen[trimmed] = struct{}{}
		set.Columns = append(set.Columns, trimmed)
	}
	return set
}

// Empty reports whether no columns survived normalization.
func (s ColumnSet) Empty() bool {
	return len(s.Columns) == 0
}

// Contains reports whether the set holds the exact label.
func (s ColumnSet) Contains(label string) bool {
	for _, c := range s.Columns {
		if c == label {
			return true
		}
	}
	return false
}
