package util

import "testing"

func TestContentHash(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := ContentHash(nil); got != empty {
		t.Errorf("Expected %s, got %s", empty, got)
	}
	if ContentHashString("a") == ContentHashString("b") {
		t.Error("Expected different inputs to hash differently")
	}
	if ContentHashString("same") != ContentHash([]byte("same")) {
		t.Error("Expected string and byte variants to agree")
	}
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Trailing!!  ", "trailing"},
		{"Café & Crème", "caf-cr-me"},
		{"IMG_2024-01.final", "img-2024-01-final"},
		{"---", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
