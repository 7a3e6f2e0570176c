// Package tags canonicalizes tag text, extracts inline #tags from record
// content and classifies them into system and user tags.
//
// A canonical tag is NFC-normalized, trimmed, lowercased and carries exactly
// one leading '#'. Normalize returns "" for input without a name; callers
// must drop empty results.
package tags

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reserved system tag names, without the '#' prefix.
const (
	Temp     = "temp"
	Longterm = "longterm"
	P1       = "p1"
	P2       = "p2"
	Conflict = "conflict"
)

// ConflictTag marks records created as conflict copies.
const ConflictTag = "#" + Conflict

var systemNames = map[string]struct{}{
	Temp:     {},
	Longterm: {},
	P1:       {},
	P2:       {},
	Conflict: {},
}

var (
	// Combining marks (\p{M}) end a tag, so tags written with vowel signs
	// keep only their leading letters. Stored tags rely on this cut.
	tagPattern  = regexp.MustCompile(`#[\p{L}\p{N}_-]+`)
	fillerChars = regexp.MustCompile(`[\s\p{P}\p{S}]+`)
	filterSep   = regexp.MustCompile(`[,\s]+`)
)

// Normalize returns the canonical form of raw, or "" when no name remains.
func Normalize(raw string) string {
	name := strings.TrimSpace(norm.NFC.String(raw))
	name = strings.TrimSpace(strings.TrimLeft(name, "#"))
	if name == "" {
		return ""
	}
	return "#" + strings.ToLower(name)
}

// IsSystem reports whether tag names a reserved system tag.
func IsSystem(tag string) bool {
	n := Normalize(tag)
	if n == "" {
		return false
	}
	_, ok := systemNames[n[1:]]
	return ok
}

// Extract returns the sorted, de-duplicated canonical tags found in text.
func Extract(text string) []string {
	matches := tagPattern.FindAllString(norm.NFC.String(text), -1)
	return uniqueSorted(matches)
}

// Split partitions tags into sorted, de-duplicated system and user tags.
// Entries that normalize to "" are dropped. Both results are non-nil.
func Split(tags []string) (system, user []string) {
	sys := make(map[string]struct{})
	usr := make(map[string]struct{})
	for _, t := range tags {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if IsSystem(n) {
			sys[n] = struct{}{}
		} else {
			usr[n] = struct{}{}
		}
	}
	return keys(sys), keys(usr)
}

// IsTagOnlyLine reports whether line holds nothing but tags, punctuation and
// whitespace. Blank lines count as tag-only.
func IsTagOnlyLine(line string) bool {
	stripped := tagPattern.ReplaceAllString(norm.NFC.String(line), "")
	return fillerChars.ReplaceAllString(stripped, "") == ""
}

// ParseFilterInput turns free-form filter text into canonical tags. Inline
// #tags win; otherwise every comma or whitespace separated token is treated
// as a tag name.
func ParseFilterInput(input string) []string {
	if found := Extract(input); len(found) > 0 {
		return found
	}
	return uniqueSorted(filterSep.Split(input, -1))
}

// Union merges tag lists into one sorted, de-duplicated canonical list.
func Union(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return uniqueSorted(all)
}

func uniqueSorted(raw []string) []string {
	set := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if n := Normalize(r); n != "" {
			set[n] = struct{}{}
		}
	}
	return keys(set)
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
