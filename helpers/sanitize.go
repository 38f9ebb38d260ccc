package helpers

import "strings"

const invalidFolderChars = `<>:"/\|?*`

const maxFolderNameLength = 100

// Sanitize converts a collection name into a filesystem-safe folder name.
// Invalid characters become underscores, boundary spaces and dots are
// trimmed, and the result is capped at 100 runes. Applying Sanitize to its
// own output is a no-op.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalidFolderChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), " .")
	if runes := []rune(out); len(runes) > maxFolderNameLength {
		out = strings.Trim(string(runes[:maxFolderNameLength]), " .")
	}
	return out
}
