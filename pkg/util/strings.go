package util

import (
	"os"
	"path/filepath"
	"strings"
)

// DigitsOnly drops every rune of s that is not an ASCII digit, keeping '+' when keepPlus is set.
func DigitsOnly(s string, keepPlus bool) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || (keepPlus && r == '+') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Str2List splits str by sep, trimming elements and dropping empty and repeated ones.
func Str2List(str string, sep string) []string {
	list := make([]string, 0)

	if str == "" {
		return list
	}

	listMap := make(map[string]bool)
	for _, elem := range strings.Split(str, sep) {
		elem = strings.TrimSpace(elem)
		if len(elem) == 0 {
			continue
		}
		if _, ok := listMap[elem]; ok {
			continue
		}
		listMap[elem] = true
		list = append(list, elem)
	}

	return list
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ParseBool accepts the spellings written by the extractors and by pandas exports.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	default:
		return false
	}
}
