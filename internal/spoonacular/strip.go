package spoonacular

import (
	"strings"

	"golang.org/x/net/html"
)

// NoInstructionsPlaceholder is shown when the upstream record has no
// instructions at all.
const NoInstructionsPlaceholder = "we couldn't find instructions for this recipe :("

// PlainInstructions returns the recipe's instructions as plain display text.
//
// Upstream instructions arrive as HTML markup (<ol><li>Preheat...</li>...).
// We tokenize it and keep only the text nodes: each fragment has embedded
// newlines collapsed to spaces and surrounding whitespace trimmed, then the
// fragments are concatenated. If the field is empty or contains no text,
// the fixed placeholder is returned instead.
func (d *RecipeDetail) PlainInstructions() string {
	if d.Instructions == "" {
		return NoInstructionsPlaceholder
	}

	stripped := stripHTML(d.Instructions)
	if stripped == "" {
		return NoInstructionsPlaceholder
	}
	return stripped
}

// stripHTML extracts the text content of an HTML fragment.
//
// WHY A TOKENIZER AND NOT A REGEX?
// Regexes over HTML break on attributes containing ">" and on entities.
// x/net/html is a real HTML5 tokenizer — it decodes entities (&amp; → &)
// and never mistakes attribute text for markup. html.NewTokenizer operates
// on a stream and can't fail on malformed input; it just emits what it can,
// which matches how browsers (and BeautifulSoup) treat real-world markup.
func stripHTML(markup string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF — end of the fragment
			break
		}
		if tt != html.TextToken {
			continue
		}

		fragment := strings.ReplaceAll(string(z.Text()), "\n", " ")
		b.WriteString(strings.TrimSpace(fragment))
	}

	return b.String()
}
