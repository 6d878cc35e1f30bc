package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
)

// fold lowers s and strips diacritics, so "Café" and "cafe" compare equal
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// FilterVenues keeps venues whose name, description, city or country contain q.
// A blank query keeps everything.
func FilterVenues(venues []domain.Venue, q string) []domain.Venue {
	needle := fold(strings.TrimSpace(q))
	if needle == "" {
		return venues
	}
	out := make([]domain.Venue, 0, len(venues))
	for _, v := range venues {
		for _, field := range []string{v.Name, v.Description, v.Location.City, v.Location.Country} {
			if strings.Contains(fold(field), needle) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
