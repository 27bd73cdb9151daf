package process

import "unicode/utf16"

// DecodeWide bridges UTF-16 text to the native byte-string representation.
// It is a pure conversion with no resource logic; a trailing NUL, common in
// wide buffers, is dropped.
func DecodeWide(w []uint16) string {
	if n := len(w); n > 0 && w[n-1] == 0 {
		w = w[:n-1]
	}
	if len(w) == 0 {
		return ""
	}
	return string(utf16.Decode(w))
}

// EncodeWide is the inverse bridge, provided for callers that hold native
// text but need the wide form.
func EncodeWide(s string) []uint16 {
	return utf16.Encode([]rune(s))
}
