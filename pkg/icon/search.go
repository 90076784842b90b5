package icon

import (
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
)

// SearchOptions selects what a search matches against. MatchTags takes
// precedence over MatchTitle.
type SearchOptions struct {
	MatchTags  bool
	MatchTitle bool

	// Logger receives the usage warning of a search without mode.
	// Defaults to log.Default().
	Logger *log.Logger
}

// NoSearchMode is the placeholder returned by a search without mode.
var NoSearchMode = Record{Tags: []string{}, Diagnostic: "No mode specified"}

// Search returns the records matching query in registry order. Matching is
// a case-insensitive substring test against every tag (MatchTags) or the id
// (MatchTitle). With neither flag set a warning is logged and the result is
// the single [NoSearchMode] placeholder.
func (r *Registry) Search(query string, opts SearchOptions) []Record {
	if !opts.MatchTags && !opts.MatchTitle {
		logger := opts.Logger
		if logger == nil {
			logger = log.Default()
		}
		logger.Warn("no mode for search specified", "query", query)
		return []Record{NoSearchMode.clone()}
	}

	fold := cases.Fold()
	q := fold.String(query)

	found := []Record{}
	for _, id := range r.IDs() {
		rec := r.byID[id]
		if opts.MatchTags {
			if anyContains(fold, rec.Tags, q) {
				found = append(found, rec.clone())
			}
			continue
		}
		if strings.Contains(fold.String(rec.ID), q) {
			found = append(found, rec.clone())
		}
	}
	return found
}

func anyContains(fold cases.Caser, values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(fold.String(v), q) {
			return true
		}
	}
	return false
}
