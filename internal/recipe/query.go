package recipe

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultMaxTime is the slider's initial position in minutes.
	DefaultMaxTime = 30
	MinMaxTime     = 10
	MaxMaxTime     = 120

	// ResultCount is the number of recipes requested per search.
	ResultCount = 5
)

// Preferences holds one form submission.
type Preferences struct {
	Mood    string `form:"mood" json:"mood"`
	MaxTime int    `form:"max_time,default=30" json:"max_time" binding:"min=10,max=120"`
	Cuisine string `form:"cuisine,default=Any" json:"cuisine" binding:"omitempty,oneof=Any Korean Japanese Chinese Italian American"`
	Keyword string `form:"keyword" json:"keyword" binding:"max=100"`
}

// DefaultPreferences returns the form's initial state.
func DefaultPreferences() Preferences {
	return Preferences{
		Mood:    string(Happy),
		MaxTime: DefaultMaxTime,
		Cuisine: AnyCuisine,
	}
}

// SearchTerm returns the free-text keyword when one was given, otherwise the
// flavor derived from the mood.
func (p Preferences) SearchTerm() string {
	if k := strings.TrimSpace(p.Keyword); k != "" {
		return k
	}
	return FlavorFor(p.Mood)
}

// SearchQuery is the parameter set sent to the search endpoint, minus the API key.
type SearchQuery struct {
	Query                string
	Cuisine              string
	MaxReadyTime         int
	Number               int
	AddRecipeInformation bool
}

// NewSearchQuery converts preferences into search parameters.
func NewSearchQuery(p Preferences) SearchQuery {
	q := SearchQuery{
		Query:                p.SearchTerm(),
		MaxReadyTime:         p.MaxTime,
		Number:               ResultCount,
		AddRecipeInformation: true,
	}
	if p.Cuisine != "" && p.Cuisine != AnyCuisine {
		q.Cuisine = p.Cuisine
	}
	return q
}

// Values encodes the query. Cuisine is omitted when unset.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("query", q.Query)
	if q.Cuisine != "" {
		v.Set("cuisine", q.Cuisine)
	}
	if q.MaxReadyTime > 0 {
		v.Set("maxReadyTime", strconv.Itoa(q.MaxReadyTime))
	}
	if q.Number > 0 {
		v.Set("number", strconv.Itoa(q.Number))
	}
	if q.AddRecipeInformation {
		v.Set("addRecipeInformation", "true")
	}
	return v
}
