package filter

import (
	"testing"

	"jobsift/internal/model"
)

func posting(title, location string) model.Posting {
	return model.Posting{Title: title, Location: location}
}

func TestKeywordFilter_Match(t *testing.T) {
	tests := []struct {
		name          string
		titleKeywords []string
		titleExclude  []string
		locations     []string
		locExclude    []string
		posting       model.Posting
		wantMatch     bool
	}{
		{
			name:          "matches both title and location",
			titleKeywords: []string{"machine learning", "data scientist"},
			locations:     []string{"Cairo", "Dubai"},
			posting:       posting("Machine Learning Engineer", "Cairo, Egypt"),
			wantMatch:     true,
		},
		{
			name:          "title match but location miss",
			titleKeywords: []string{"data scientist"},
			locations:     []string{"Cairo"},
			posting:       posting("Data Scientist", "London, UK"),
			wantMatch:     false,
		},
		{
			name:          "case insensitive matching",
			titleKeywords: []string{"AI ENGINEER"},
			locations:     []string{"dubai"},
			posting:       posting("Ai Engineer II", "Dubai, UAE"),
			wantMatch:     true,
		},
		{
			name:          "exclude keyword overrides include",
			titleKeywords: []string{"engineer"},
			titleExclude:  []string{"senior", "staff"},
			posting:       posting("Senior ML Engineer", "Cairo, Egypt"),
			wantMatch:     false,
		},
		{
			name:       "exclude location",
			locations:  []string{"Egypt", "UAE"},
			locExclude: []string{"remote"},
			posting:    posting("ML Engineer", "Remote - Egypt"),
			wantMatch:  false,
		},
		{
			name:      "empty lists match all",
			posting:   posting("Anything", "Anywhere"),
			wantMatch: true,
		},
		{
			name:          "no title keyword matches",
			titleKeywords: []string{"devops", "sre"},
			posting:       posting("Frontend Developer", "Cairo, Egypt"),
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewKeywordFilter(tt.titleKeywords, tt.titleExclude, tt.locations, tt.locExclude)
			if got := f.Match(tt.posting); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}
