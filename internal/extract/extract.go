// Package extract pulls phone-number-like tokens out of free text and archives.
package extract

import (
	"regexp"
	"strings"
)

const (
	MinDigits = 10
	MaxDigits = 15
)

// Rule is one pattern class. Matches go through Normalize before the length check.
type Rule struct {
	Name      string
	Pattern   *regexp.Regexp
	Normalize func(string) string
}

// Rules is the default rule list, applied in order.
var Rules = []Rule{
	{Name: "plus", Pattern: regexp.MustCompile(`\+\d{10,15}`), Normalize: Normalize},
	{Name: "digits", Pattern: regexp.MustCompile(`\d{10,15}`), Normalize: Normalize},
	{Name: "grouped", Pattern: regexp.MustCompile(`\d{1,4}[-\s\p{Zs}]\d{3,4}[-\s\p{Zs}]\d{3,4}[-\s\p{Zs}]\d{3,4}`), Normalize: Normalize},
}

var separators = strings.NewReplacer("+", "", "-", "")

// Normalize strips the plus sign, hyphens and whitespace.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(separators.Replace(raw)), "")
}

// Numbers runs the default rules over text.
func Numbers(text string) []string {
	return Apply(Rules, text)
}

// Apply collects matches of every rule in order and dedupes on the normalized value,
// keeping the first occurrence.
func Apply(rules []Rule, text string) []string {
	var found []string
	for _, r := range rules {
		norm := r.Normalize
		if norm == nil {
			norm = Normalize
		}
		for _, m := range r.Pattern.FindAllString(text, -1) {
			cleaned := norm(m)
			if n := len(cleaned); n < MinDigits || n > MaxDigits {
				continue
			}
			found = append(found, cleaned)
		}
	}
	return Merge(found)
}

// Merge is an order-preserving union of the given lists.
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// DecodeText reads b as UTF-8, dropping invalid byte sequences.
func DecodeText(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}
