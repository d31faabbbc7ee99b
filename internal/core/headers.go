package core

import (
	"strings"
)

// DefaultSynonyms maps each role to the header names accepted for it, in
// priority order.
var DefaultSynonyms = map[Role][]string{
	RoleIdentifier:  {"id", "issue number", "issue_number", "issue-number"},
	RoleCustomer:    {"name"},
	RoleDescription: {"description", "descrip", "details"},
	RoleAmount:      {"amount", "qty", "euro", "price"},
	RoleDate:        {"date"},
}

// HeaderResolver maps externally authored column names onto roles.
type HeaderResolver struct {
	synonyms map[Role][]string
}

// NewHeaderResolver returns a resolver using the default synonyms followed
// by any extra names per role. Extra names never displace the defaults.
func NewHeaderResolver(extra map[Role][]string) *HeaderResolver {
	syn := make(map[Role][]string, len(DefaultSynonyms))
	for role, names := range DefaultSynonyms {
		syn[role] = append([]string(nil), names...)
	}
	for role, names := range extra {
		for _, n := range names {
			n = normalizeHeader(n)
			if n == "" || containsString(syn[role], n) {
				continue
			}
			syn[role] = append(syn[role], n)
		}
	}
	return &HeaderResolver{synonyms: syn}
}

// Synonyms returns the accepted names for role.
func (h *HeaderResolver) Synonyms(role Role) []string {
	return append([]string(nil), h.synonyms[role]...)
}

// Resolve returns the zero-based column index for role: the first synonym,
// in priority order, matching a header cell case-insensitively.
func (h *HeaderResolver) Resolve(header []string, role Role) (int, bool) {
	index := make(map[string]int, len(header))
	for i, cell := range header {
		key := normalizeHeader(cell)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	for _, name := range h.synonyms[role] {
		if i, ok := index[name]; ok {
			return i, true
		}
	}
	return -1, false
}

// ResolveAll resolves every role against header. It fails with a
// *SchemaError naming each required role that is missing.
func (h *HeaderResolver) ResolveAll(header []string) (ColumnMap, error) {
	cols := make(ColumnMap, len(AllRoles))
	for _, role := range AllRoles {
		i, _ := h.Resolve(header, role)
		cols[role] = i
	}

	var missing []Role
	for _, role := range RequiredRoles {
		if cols[role] < 0 {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Header: append([]string(nil), header...)}
	}
	return cols, nil
}

// normalizeHeader trims, lowercases, and strips spreadsheet artifacts such as
// a leading BOM or an Excel ="..." wrapper.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
