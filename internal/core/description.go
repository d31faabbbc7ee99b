package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EncodeDescriptions serializes line items as a JSON array of strings.
// An empty list encodes as "[]", never as a blank string.
func EncodeDescriptions(items []string) string {
	if len(items) == 0 {
		return "[]"
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// DecodeDescriptions parses a stored description field. Blank, "null",
// malformed, or non-string-array values decode to an empty list.
func DecodeDescriptions(stored string) []string {
	stored = strings.TrimSpace(stored)
	if stored == "" || stored == "null" {
		return []string{}
	}

	var raw []any
	if err := json.Unmarshal([]byte(stored), &raw); err != nil {
		return []string{}
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return []string{}
		}
		items = append(items, s)
	}
	return items
}

// FormatDescriptions renders a stored description field for display.
func FormatDescriptions(stored, sep string) string {
	return strings.Join(DecodeDescriptions(stored), sep)
}

// NormalizeDescription splits a raw CSV description cell into line items.
//
// Separators are tried in order: '|', newline, then ',' when it yields more
// than one item. Otherwise the whole cell is a single item.
func NormalizeDescription(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	switch {
	case strings.Contains(raw, "|"):
		return splitNonBlank(raw, "|")
	case strings.ContainsAny(raw, "\r\n"):
		return splitNonBlank(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	case strings.Contains(raw, ","):
		if items := splitNonBlank(raw, ","); len(items) > 1 {
			return items
		}
	}
	return []string{raw}
}

func splitNonBlank(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
