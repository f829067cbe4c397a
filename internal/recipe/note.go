package recipe

import (
	"fmt"
	"strings"
)

// NotePrompt builds the prompt asking an LLM why d suits someone in mood.
func NotePrompt(mood, flavor string, d *Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Someone feeling %s is looking for something %s to cook. ", strings.ToLower(mood), flavor)
	fmt.Fprintf(&b, "In at most two friendly sentences, say why %q suits them.", d.Title)
	if lines := d.IngredientLines(); len(lines) > 0 {
		if len(lines) > 8 {
			lines = lines[:8]
		}
		fmt.Fprintf(&b, " Key ingredients: %s.", strings.Join(lines, "; "))
	}
	if d.ReadyInMinutes != nil {
		fmt.Fprintf(&b, " It is ready in %d minutes.", *d.ReadyInMinutes)
	}
	b.WriteString(" Respond with plain text only, no markdown.")
	return b.String()
}
