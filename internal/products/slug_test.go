package product

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateSlug(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	cases := map[string]string{
		"Café Orgánico 250g":       "cafe-organico-250g-550e8400",
		"  Ají   de  la Huerta  ":  "aji-de-la-huerta-550e8400",
		"Piña & Maracuyá (200 ml)": "pina-maracuya-200-ml-550e8400",
		"Chocolate-Amargo":         "chocolate-amargo-550e8400",
	}
	for name, want := range cases {
		if got := GenerateSlug(name, id); got != want {
			t.Fatalf("GenerateSlug(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSlugSuffix(t *testing.T) {
	if got, ok := SlugSuffix("cafe-organico-550e8400"); !ok || got != "550e8400" {
		t.Fatalf("expected suffix 550e8400, got %q ok=%v", got, ok)
	}
	for _, bad := range []string{"", "cafe", "cafe-550e84", "cafe-zzzzzzzz", "cafe-550e84001"} {
		if _, ok := SlugSuffix(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
