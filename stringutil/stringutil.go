package stringutil

import "strings"

// Map applies f to each string in in.
func Map(in []string, f func(string) string) []string {
	res := make([]string, 0, len(in))
	for _, s := range in {
		res = append(res, f(s))
	}
	return res
}

// Contains returns true if in contains element,
// false if not.
func Contains(in []string, element string) bool {
	for _, a := range in {
		if a == element {
			return true
		}
	}
	return false
}

// ContainsAny returns true if in and elements share at least one string.
// An empty elements never matches.
func ContainsAny(in []string, elements []string) bool {
	for _, e := range elements {
		if Contains(in, e) {
			return true
		}
	}
	return false
}

// Uniq returns in without duplicates,
// keeping the first occurrence of each string.
func Uniq(in []string) []string {
	res := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	return res
}

// Compact trims each string and drops the ones left empty.
func Compact(in []string) []string {
	res := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			res = append(res, t)
		}
	}
	return res
}

// SplitList splits each of values on commas,
// and returns the non-empty trimmed parts.
// Used for list parameters that may be repeated ("a&a") or joined ("a,b").
func SplitList(values []string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		res = append(res, Compact(strings.Split(v, ","))...)
	}
	return res
}
