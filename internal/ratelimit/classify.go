package ratelimit

import (
	"net/http"
	"regexp"
)

// Match is the endpoint class a request falls into.
type Match int

const (
	// NoMatch requests bypass the limiter entirely.
	NoMatch Match = iota
	// ListMatch is GET on the companies collection.
	ListMatch
	// UpdateMatch is PATCH or PUT on a company with a numeric id.
	UpdateMatch
	// DeleteMatch is DELETE on a company with a numeric id.
	DeleteMatch
)

var (
	collectionPath = regexp.MustCompile(`(?i)^/api/v1/companies$`)
	itemPath       = regexp.MustCompile(`^/api/v1/companies/\d+$`)
)

// String returns the label used in logs and metrics.
func (m Match) String() string {
	switch m {
	case ListMatch:
		return "list"
	case UpdateMatch:
		return "update"
	case DeleteMatch:
		return "delete"
	default:
		return "none"
	}
}

// Counted reports whether requests of this class go through the counter.
func (m Match) Counted() bool {
	return m != NoMatch
}

// Classify maps a request method and path onto a Match.
// POST on the collection and GET on an item are deliberately NoMatch.
func Classify(method, path string) Match {
	switch method {
	case http.MethodGet:
		if collectionPath.MatchString(path) {
			return ListMatch
		}
	case http.MethodPatch, http.MethodPut:
		if itemPath.MatchString(path) {
			return UpdateMatch
		}
	case http.MethodDelete:
		if itemPath.MatchString(path) {
			return DeleteMatch
		}
	}
	return NoMatch
}
