package api

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"smartmeal/internal/recipe"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page and fragment templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

const (
	untitledRecipe = "Untitled recipe"
	notAvailable   = "n/a"
)

type page struct {
	Moods    []recipe.Mood
	Cuisines []string
	MinTime  int
	MaxTime  int
	Prefs    recipe.Preferences

	Searched bool
	Term     string
	Flavor   string
	Results  []resultView
	Warning  string
	Error    string
}

func newPage(prefs recipe.Preferences) page {
	return page{
		Moods:    recipe.Moods(),
		Cuisines: recipe.Cuisines(),
		MinTime:  recipe.MinMaxTime,
		MaxTime:  recipe.MaxMaxTime,
		Prefs:    prefs,
	}
}

type resultView struct {
	ID       int
	Title    string
	Image    string
	ReadyIn  string
	Servings string
	PanelURL string
}

func newResultView(s recipe.Summary, mood string) resultView {
	v := resultView{
		ID:       s.ID,
		Title:    strings.TrimSpace(s.Title),
		Image:    s.Image,
		ReadyIn:  notAvailable,
		Servings: notAvailable,
	}
	if v.Title == "" {
		v.Title = untitledRecipe
	}
	if s.ReadyInMinutes != nil {
		v.ReadyIn = strconv.Itoa(*s.ReadyInMinutes) + " min"
	}
	if s.Servings != nil {
		v.Servings = strconv.Itoa(*s.Servings)
	}

	panel := "/recipes/" + strconv.Itoa(s.ID) + "/panel"
	if mood != "" {
		panel += "?" + url.Values{"mood": {mood}}.Encode()
	}
	v.PanelURL = panel
	return v
}

type panelView struct {
	Ingredients []string
	Steps       []recipe.Step
	SourceURL   string
	Note        string
	Error       string
}

func newPanelView(d *recipe.Detail) panelView {
	return panelView{
		Ingredients: d.IngredientLines(),
		Steps:       d.Steps(),
		SourceURL:   d.SourceURL,
	}
}
