// Package recommend asks a language model for a minimal tool selection and
// validates its answer against the catalog.
//
// The model's output is untrusted. Validate never fails: anything it cannot
// use is dropped, and the result only ever names items that exist.
package recommend

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Selection categories, as used in model output and rationale keys.
const (
	CategoryRules  = "rules"
	CategoryAgents = "agents"
	CategoryMCPs   = "mcps"
)

const (
	// MaxPerCategory caps how many items of each category are selected.
	MaxPerCategory = 3
	// MaxRationaleLen caps rationale values, in runes.
	MaxRationaleLen = 200
)

// Selection is the validated recommendation. Lists are never nil.
type Selection struct {
	Rules  []string `json:"rules"`
	Agents []string `json:"agents"`
	MCPs   []string `json:"mcps"`
}

// EmptySelection returns a selection with three empty lists.
func EmptySelection() Selection {
	return Selection{Rules: []string{}, Agents: []string{}, MCPs: []string{}}
}

func (s Selection) list(category string) []string {
	switch category {
	case CategoryRules:
		return s.Rules
	case CategoryAgents:
		return s.Agents
	case CategoryMCPs:
		return s.MCPs
	}
	return nil
}

// Rationales maps "<category>:<slug>" to a one-line reason.
type Rationales map[string]string

// Extraction is the JSON object recovered from raw model output.
type Extraction struct {
	Object map[string]any
	Parsed bool
}

// Extract parses raw as a JSON object. When that fails it tries the first
// balanced {...} block starting at the first '{', honoring JSON strings.
func Extract(raw string) Extraction {
	if obj, ok := decodeObject(raw); ok {
		return Extraction{Object: obj, Parsed: true}
	}
	block, ok := firstObjectBlock(raw)
	if !ok {
		return Extraction{}
	}
	if obj, ok := decodeObject(block); ok {
		return Extraction{Object: obj, Parsed: true}
	}
	return Extraction{}
}

func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	// Trailing data means s was not a single object.
	if strings.TrimSpace(s[dec.InputOffset():]) != "" {
		return nil, false
	}
	return obj, true
}

// firstObjectBlock returns the text from the first '{' to its matching '}'.
func firstObjectBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Validate turns raw model output into a selection that only names catalog
// items. For each category non-strings, unknown slugs and duplicates are
// dropped, and the first MaxPerCategory remaining slugs are kept in order.
// Rationales are nil unless the output carries a rationales object; only
// keys naming a selected item are kept.
func Validate(raw string, cat *Catalog) (Selection, Rationales) {
	sel := EmptySelection()
	ext := Extract(raw)
	if !ext.Parsed {
		return sel, nil
	}

	sel.Rules = filter(ext.Object[CategoryRules], CategoryRules, cat)
	sel.Agents = filter(ext.Object[CategoryAgents], CategoryAgents, cat)
	sel.MCPs = filter(ext.Object[CategoryMCPs], CategoryMCPs, cat)

	obj, ok := ext.Object["rationales"].(map[string]any)
	if !ok {
		return sel, nil
	}
	rationales := make(Rationales)
	for key, value := range obj {
		category, slug, ok := strings.Cut(key, ":")
		if !ok || !contains(sel.list(category), slug) {
			continue
		}
		rationales[key] = truncateRunes(stringify(value), MaxRationaleLen)
	}
	return sel, rationales
}

func filter(v any, category string, cat *Catalog) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		slug, ok := item.(string)
		if !ok || !cat.has(category, slug) || contains(out, slug) {
			continue
		}
		out = append(out, slug)
		if len(out) == MaxPerCategory {
			break
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
