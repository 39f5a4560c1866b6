package services

import (
	"strings"

	"github.com/monoforge/monoforge/internal/domain/entities"
)

// RenderFeatureList renders one markdown link line per feature:
//
//	{itemPrefix}[{displayName}]({pathPrefix}{reference or "#"}) : {first line of description}
//
// Lines are joined with "\n" and carry no trailing newline.
func RenderFeatureList(features []entities.Feature, itemPrefix, pathPrefix string) string {
	lines := make([]string, 0, len(features))
	for _, f := range features {
		ref := f.Reference
		if ref == "" {
			ref = "#"
		}

		var b strings.Builder
		b.WriteString(itemPrefix)
		b.WriteString("[")
		b.WriteString(f.DisplayName)
		b.WriteString("](")
		b.WriteString(pathPrefix)
		b.WriteString(ref)
		b.WriteString(") : ")
		b.WriteString(FirstLine(f.Description))
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// FirstLine returns s up to its first line break.
func FirstLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
