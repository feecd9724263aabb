package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/mdpdf/core"
)

const (
	minBinarySample = 64 // bytes needed before judging by control characters
	maxControlShare = 2  // percent
)

// Input returns an error with code core.EINVALID if src is not valid UTF-8
// or looks like binary data. A single NUL byte marks data as binary, as does
// a share of control characters of 2 percent or more in inputs of at least
// 64 bytes. Tabs and line ends are not control characters here.
func Input(src []byte) error {
	if !utf8.Valid(src) {
		return core.Error(core.EINVALID, "input is not valid UTF-8 text")
	}
	control := 0
	for _, b := range src {
		if b == 0 {
			return core.Error(core.EINVALID, "input looks like binary data")
		}
		if isControl(b) {
			control++
		}
	}
	if len(src) >= minBinarySample && control*100 >= len(src)*maxControlShare {
		return core.Error(core.EINVALID, "input looks like binary data")
	}
	return nil
}

func isControl(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f':
		return false
	}
	return b < 0x20 || b == 0x7f
}

// Sanitize prepares text for lexing. Invalid UTF-8 sequences and NUL bytes
// are replaced by U+FFFD. If Input finds a problem, it is reported as a
// MalformedInput diagnostic; the text is lexed anyway.
func Sanitize(text string) (string, []Diagnostic) {
	err := Input([]byte(text))
	if err == nil {
		return text, nil
	}
	tracer().Infof("input: %v", err)
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	text = strings.ReplaceAll(text, "\x00", string(utf8.RuneError))
	return text, []Diagnostic{MalformedInputWarning(core.UserMessage(err))}
}
