package util

import "strings"

// SplitLines splits s into non-empty lines, tolerating both \n and \r\n.
func SplitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
