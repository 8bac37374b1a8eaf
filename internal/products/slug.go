package product

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const slugIDLength = 8

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
)

// GenerateSlug builds "<ascii-name>-<first 8 hex of id>", e.g. cafe-organico-250g-550e8400.
func GenerateSlug(name string, id uuid.UUID) string {
	return slugBase(name) + "-" + slugSuffix(id)
}

// SlugSuffix extracts the id prefix a slug ends with. ok is false for malformed slugs.
func SlugSuffix(slug string) (string, bool) {
	idx := strings.LastIndex(slug, "-")
	if idx < 0 || len(slug)-idx-1 != slugIDLength {
		return "", false
	}
	suffix := strings.ToLower(slug[idx+1:])
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", false
		}
	}
	return suffix, true
}

func slugBase(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), strings.ToLower(name))
	if err != nil {
		stripped = strings.ToLower(name)
	}
	stripped = slugDisallowed.ReplaceAllString(stripped, "")
	return slugSpaces.ReplaceAllString(strings.TrimSpace(stripped), "-")
}

func slugSuffix(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:slugIDLength]
}
