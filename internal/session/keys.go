package session

// IsSubmitKey reports whether a key event in the scenario editor submits.
// Plain Enter submits; Enter with any modifier inserts a newline.
func IsSubmitKey(key string, shift, alt, ctrl, meta bool) bool {
	return key == "Enter" && !shift && !alt && !ctrl && !meta
}
