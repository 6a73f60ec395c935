package main

import (
	"strconv"
	"strings"
)

// miscellaneous utility functions

func firstElementOf(s []string) string {
	// return first element of slice, or blank string if empty
	val := ""

	if len(s) > 0 {
		val = s[0]
	}

	return val
}

func stringify(s []string) string {
	// multi-valued parameters collapse into one space-separated string
	return strings.Join(s, " ")
}

func listify(s string) []string {
	return []string{s}
}

func sliceContainsString(haystack []string, needle string, insensitive bool) bool {
	if len(haystack) == 0 {
		return false
	}

	for _, item := range haystack {
		a := item
		b := needle

		if insensitive == true {
			a = strings.ToLower(item)
			b = strings.ToLower(needle)
		}

		if a == b {
			return true
		}
	}

	return false
}

func nonemptyValues(val []string) []string {
	res := []string{}

	for _, s := range val {
		if strings.TrimSpace(s) != "" {
			res = append(res, s)
		}
	}

	return res
}

func integerWithMinimum(str string, min int) int {
	val, err := strconv.Atoi(strings.TrimSpace(str))

	// fallback for invalid or nonsensical values
	if err != nil || val < min {
		val = min
	}

	return val
}

func integerInList(str string, allowed []int, fallback int) int {
	val, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return fallback
	}

	for _, a := range allowed {
		if a == val {
			return val
		}
	}

	return fallback
}

func zeroPad(s string, width int) string {
	// left-pads numeric date components, leaving longer values alone
	if len(s) >= width {
		return s
	}

	return strings.Repeat("0", width-len(s)) + s
}

func unquote(s string) string {
	// strips one pair of wrapping double quotes, if any
	if len(s) > 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}

	return s
}

func lastSegmentOf(msg string, sep string) string {
	pieces := strings.Split(msg, sep)

	return strings.TrimSpace(pieces[len(pieces)-1])
}
