package core

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeDescriptions(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"single item", []string{"standard"}},
		{"several items", []string{"gift wrap", "express shipping"}},
		{"greek text", []string{"εκτύπωση", "βιβλιοδεσία"}},
		{"quotes and html", []string{`50 "A4" sheets`, "<b>bold</b> & co"}},
		{"comma inside item", []string{"cards, matte"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeDescriptions(tt.items)
			got := DecodeDescriptions(encoded)
			if !reflect.DeepEqual(got, tt.items) {
				t.Errorf("Decode(Encode(%q)) = %q (encoded %s)", tt.items, got, encoded)
			}
		})
	}
}

func TestEncodeDescriptionsEmpty(t *testing.T) {
	for _, items := range [][]string{nil, {}} {
		encoded := EncodeDescriptions(items)
		if encoded != "[]" {
			t.Errorf("EncodeDescriptions(%v) = %q, want []", items, encoded)
		}
		got := DecodeDescriptions(encoded)
		if got == nil || len(got) != 0 {
			t.Errorf("DecodeDescriptions(%q) = %#v, want empty non-nil slice", encoded, got)
		}
	}
}

func TestEncodeDescriptionsKeepsUnicode(t *testing.T) {
	got := EncodeDescriptions([]string{"κάρτες", "a&b"})
	want := `["κάρτες","a&b"]`
	if got != want {
		t.Errorf("EncodeDescriptions() = %s, want %s", got, want)
	}
}

func TestDecodeDescriptionsDegrades(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"null", "null"},
		{"plain text", "business cards"},
		{"object", `{"a": "b"}`},
		{"number array", "[1, 2]"},
		{"mixed array", `["a", null]`},
		{"json string", `"just one"`},
		{"truncated", `["a", "b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeDescriptions(tt.stored)
			if got == nil || len(got) != 0 {
				t.Errorf("DecodeDescriptions(%q) = %#v, want empty", tt.stored, got)
			}
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"pipe separated", "gift wrap|express shipping", []string{"gift wrap", "express shipping"}},
		{"no separator", "standard", []string{"standard"}},
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"newline separated", "flyers\nposters\n", []string{"flyers", "posters"}},
		{"crlf separated", "flyers\r\nposters", []string{"flyers", "posters"}},
		{"comma separated", "cards, stickers ,banner", []string{"cards", "stickers", "banner"}},
		{"pipe wins over comma", "cards, matte|stickers", []string{"cards, matte", "stickers"}},
		{"newline wins over comma", "a, b\nc", []string{"a, b", "c"}},
		{"single comma token stays raw", "cards,", []string{"cards,"}},
		{"blank pipe tokens dropped", "| a || b |", []string{"a", "b"}},
		{"only pipes", "||", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDescription(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeDescription(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatDescriptions(t *testing.T) {
	got := FormatDescriptions(`["a","b"]`, " | ")
	if got != "a | b" {
		t.Errorf("FormatDescriptions() = %q, want %q", got, "a | b")
	}
	if got := FormatDescriptions("garbage", ", "); got != "" {
		t.Errorf("FormatDescriptions(garbage) = %q, want empty", got)
	}
}
