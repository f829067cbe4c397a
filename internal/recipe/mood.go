package recipe

// Mood is one of the user-selectable emotional-state labels.
type Mood string

const (
	Happy    Mood = "Happy"
	Tired    Mood = "Tired"
	Stressed Mood = "Stressed"
	Lazy     Mood = "Lazy"
	Neutral  Mood = "Neutral"
)

// DefaultFlavor is used for any mood outside the table.
const DefaultFlavor = "simple"

var flavors = map[Mood]string{
	Happy:    "sweet",
	Tired:    "comfort",
	Stressed: "spicy",
	Lazy:     "easy",
	Neutral:  "simple",
}

// Moods returns the selectable moods in form order.
func Moods() []Mood {
	return []Mood{Happy, Tired, Stressed, Lazy, Neutral}
}

// FlavorFor maps a mood label to its flavor keyword.
func FlavorFor(mood string) string {
	if f, ok := flavors[Mood(mood)]; ok {
		return f
	}
	return DefaultFlavor
}

// AnyCuisine disables the cuisine filter.
const AnyCuisine = "Any"

// Cuisines returns the selectable cuisines, AnyCuisine first.
func Cuisines() []string {
	return []string{AnyCuisine, "Korean", "Japanese", "Chinese", "Italian", "American"}
}
