package recipe

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Summary is the abbreviated recipe record returned by the search endpoint.
// Every field may be absent in the upstream payload.
type Summary struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image,omitempty"`
	ReadyInMinutes *int   `json:"readyInMinutes,omitempty"`
	Servings       *int   `json:"servings,omitempty"`
	SourceURL      string `json:"sourceUrl,omitempty"`
}

// Ingredient is a single line of the detail endpoint's extendedIngredients.
type Ingredient struct {
	Original string `json:"original"`
}

// Step is one numbered instruction step.
type Step struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// Instruction is a named block of steps. Most recipes carry a single unnamed block.
type Instruction struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Detail is the expanded recipe record returned by the detail endpoint.
type Detail struct {
	ID                   int           `json:"id"`
	Title                string        `json:"title"`
	Image                string        `json:"image,omitempty"`
	ReadyInMinutes       *int          `json:"readyInMinutes,omitempty"`
	Servings             *int          `json:"servings,omitempty"`
	SourceURL            string        `json:"sourceUrl,omitempty"`
	ExtendedIngredients  []Ingredient  `json:"extendedIngredients"`
	AnalyzedInstructions []Instruction `json:"analyzedInstructions"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Detail.
// Spoonacular sends null for empty lists on some recipes.
func (d *Detail) UnmarshalJSON(data []byte) error {
	type Alias Detail // Create an alias to avoid infinite recursion
	if err := json.Unmarshal(data, (*Alias)(d)); err != nil {
		return err
	}

	if d.ExtendedIngredients == nil {
		d.ExtendedIngredients = []Ingredient{}
	}
	if d.AnalyzedInstructions == nil {
		d.AnalyzedInstructions = []Instruction{}
	}
	d.Title = strings.TrimSpace(d.Title)

	return nil
}

// IngredientLines returns the non-blank ingredient lines in upstream order.
func (d *Detail) IngredientLines() []string {
	lines := make([]string, 0, len(d.ExtendedIngredients))
	for _, ing := range d.ExtendedIngredients {
		if s := strings.TrimSpace(ing.Original); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// Steps returns the steps of the first instruction block, or nil when the
// recipe has no analyzed instructions.
func (d *Detail) Steps() []Step {
	if len(d.AnalyzedInstructions) == 0 {
		return nil
	}
	return d.AnalyzedInstructions[0].Steps
}

// Search is a recorded form submission.
type Search struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Mood        string    `json:"mood" db:"mood"`
	MaxTime     int       `json:"max_time" db:"max_time"`
	Cuisine     string    `json:"cuisine" db:"cuisine"`
	Keyword     string    `json:"keyword,omitempty" db:"keyword"`
	Term        string    `json:"term" db:"term"`
	ResultCount int       `json:"result_count" db:"result_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewSearch builds a history record for p and the number of results it produced.
func NewSearch(p Preferences, resultCount int) *Search {
	return &Search{
		ID:          uuid.New(),
		Mood:        p.Mood,
		MaxTime:     p.MaxTime,
		Cuisine:     p.Cuisine,
		Keyword:     strings.TrimSpace(p.Keyword),
		Term:        p.SearchTerm(),
		ResultCount: resultCount,
		CreatedAt:   time.Now().UTC(),
	}
}
