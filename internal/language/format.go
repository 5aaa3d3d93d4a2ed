package language

import (
	"strings"

	"github.com/vektah/gqlparser/v2/formatter"
)

// FormatQuery prints a query document as canonical GraphQL source.
// Two documents that print identically are considered structurally equal.
func FormatQuery(doc *QueryDocument) string {
	var b strings.Builder
	formatter.NewFormatter(&b).FormatQueryDocument(doc)
	return b.String()
}
