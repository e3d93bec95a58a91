package filter

import (
	"strings"

	"jobsift/internal/model"
)

// Ensure KeywordFilter implements model.PostingFilter.
var _ model.PostingFilter = (*KeywordFilter)(nil)

// KeywordFilter is the keyword prefilter applied before classification: the
// title must contain an include keyword (and no exclude keyword), and the
// location must contain an include location (and no exclude location).
// Matching is case-insensitive substring. Empty keyword lists match all.
type KeywordFilter struct {
	titleKeywords        []string
	titleExcludeKeywords []string
	locations            []string
	excludeLocations     []string
}

// NewKeywordFilter returns a filter over title and location keywords.
func NewKeywordFilter(titleKeywords, titleExcludeKeywords, locations, excludeLocations []string) *KeywordFilter {
	return &KeywordFilter{
		titleKeywords:        titleKeywords,
		titleExcludeKeywords: titleExcludeKeywords,
		locations:            locations,
		excludeLocations:     excludeLocations,
	}
}

// Match reports whether the posting passes every keyword rule.
func (f *KeywordFilter) Match(p model.Posting) bool {
	titleLower := strings.ToLower(p.Title)
	locationLower := strings.ToLower(p.Location)

	if containsAny(titleLower, f.titleExcludeKeywords) {
		return false
	}
	if containsAny(locationLower, f.excludeLocations) {
		return false
	}

	if len(f.titleKeywords) > 0 && !containsAny(titleLower, f.titleKeywords) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(locationLower, f.locations) {
		return false
	}

	return true
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
