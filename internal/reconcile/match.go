package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

// MatchReport describes how an upload's columns line up against a template.
// Matched/Missing/Extra are sorted for deterministic output.
type MatchReport struct {
	Template         string   `json:"template"`
	Matched          []string `json:"matched_columns"`
	Missing          []string `json:"missing_columns"`
	Extra            []string `json:"extra_columns"`
	MatchPercentage  float64  `json:"match_percentage"`
	TotalUploaded    int      `json:"total_uploaded"`
	TotalTemplate    int      `json:"total_template"`
	InvalidCount     int      `json:"invalid_count"`
	HasAmbiguity     bool     `json:"has_ambiguity"`
	AmbiguityMessage string   `json:"ambiguity_message,omitempty"`
}

// Match compares a normalized column set against a template vocabulary.
// Matching is case-sensitive and exact; near-misses in case or spacing are
// deliberately surfaced as missing+extra pairs rather than guessed at.
func Match(set ColumnSet, tpl template.Template) MatchReport {
	inTemplate := make(map[string]struct{}, len(tpl.Columns))
	for _, c := range tpl.Columns {
		inTemplate[c] = struct{}{}
	}
	uploaded := make(map[string]struct{}, len(set.Columns))
	for _, c := range set.Columns {
		uploaded[c] = struct{}{}
	}

	r := MatchReport{
		Template:      tpl.Name,
		TotalUploaded: len(set.Columns),
		TotalTemplate: len(tpl.Columns),
		InvalidCount:  len(set.Dropped),
	}
	for _, c := range set.Columns {
		if _, ok := inTemplate[c]; ok {
			r.Matched = append(r.Matched, c)
		} else {
			r.Extra = append(r.Extra, c)
		}
	}
	for _, c := range tpl.Columns {
		if _, ok := uploaded[c]; !ok {
			r.Missing = append(r.Missing, c)
		}
	}
	finalizeReport(&r)
	return r
}

// finalizeReport sorts the column lists and derives the percentage, the
// ambiguity flag, and the message from the raw Matched/Missing/Extra sets.
// Dropped placeholder columns were healed by normalization: they get a
// message clause but do not make the upload ambiguous on their own.
func finalizeReport(r *MatchReport) {
	sort.Strings(r.Matched)
	sort.Strings(r.Missing)
	sort.Strings(r.Extra)

	if r.TotalTemplate > 0 {
		pct := float64(len(r.Matched)) / float64(r.TotalTemplate) * 100
		r.MatchPercentage = math.Round(pct*100) / 100
	}

	r.HasAmbiguity = len(r.Missing) > 0 || len(r.Extra) > 0
	var clauses []string
	if len(r.Missing) > 0 {
		clauses = append(clauses, fmt.Sprintf("MISSING COLUMNS (%d): %s",
			len(r.Missing), strings.Join(r.Missing, ", ")))
	}
	if len(r.Extra) > 0 {
		clauses = append(clauses, fmt.Sprintf("EXTRA COLUMNS (%d): %s",
			len(r.Extra), strings.Join(r.Extra, ", ")))
	}
	if r.InvalidCount > 0 {
		clauses = append(clauses, fmt.Sprintf("INVALID COLUMNS (%d): filtered out empty or unnamed columns",
			r.InvalidCount))
	}
	r.AmbiguityMessage = strings.Join(clauses, " | ")
}
