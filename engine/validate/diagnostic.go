package validate

import (
	"fmt"
	"strings"
)

// Kind classifies diagnostics.
type Kind uint8

const (
	MissingFont Kind = iota
	MissingImage
	MissingConfig
	UnicodeWithoutFont
	LargeDocument
	SyntaxWarning
	SubsetFailed
	MalformedInput
)

var kindNames = [...]string{"missing-font", "missing-image", "missing-config",
	"unicode-without-font", "large-document", "syntax", "subset-failed", "malformed-input"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is a warning about a document or its resources.
type Diagnostic struct {
	Kind       Kind
	Message    string
	Suggestion string
	Line       int // 1-based source line, 0 if not applicable
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", d.Line)
	}
	b.WriteString(d.Message)
	if d.Suggestion != "" {
		b.WriteString("\n   hint: " + d.Suggestion)
	}
	return b.String()
}

// MissingFontWarning reports a font which could not be found.
func MissingFontWarning(name string) Diagnostic {
	return Diagnostic{
		Kind:    MissingFont,
		Message: fmt.Sprintf("font '%s' not found", name),
		Suggestion: fmt.Sprintf("install '%s' or specify fallback fonts; a built-in fallback font is used",
			name),
	}
}

// MissingImageWarning reports an image which cannot be embedded.
func MissingImageWarning(path string, reason string) Diagnostic {
	msg := "image not found: " + path
	if reason != "" {
		msg = fmt.Sprintf("image %s: %s", path, reason)
	}
	return Diagnostic{
		Kind:       MissingImage,
		Message:    msg,
		Suggestion: "check that the image path is correct and the file exists",
	}
}

// MissingConfigWarning reports a style sheet file which could not be read.
func MissingConfigWarning(path string) Diagnostic {
	return Diagnostic{
		Kind:       MissingConfig,
		Message:    "style sheet not found: " + path,
		Suggestion: "the built-in styles are used",
	}
}

// UnicodeWithoutFontWarning reports characters which the built-in fonts
// cannot display.
func UnicodeWithoutFontWarning(samples []string) Diagnostic {
	return Diagnostic{
		Kind: UnicodeWithoutFont,
		Message: fmt.Sprintf("document contains characters (e.g., '%s') not covered by the built-in fonts",
			strings.Join(samples, "")),
		Suggestion: "configure a Unicode font such as 'Noto Sans' as default font, or add it as a fallback font",
	}
}

// LargeDocumentWarning reports a document of n characters.
func LargeDocumentWarning(n int) Diagnostic {
	return Diagnostic{
		Kind:       LargeDocument,
		Message:    fmt.Sprintf("large document (%d characters)", n),
		Suggestion: "processing may take a moment; consider splitting the document",
	}
}

// SyntaxWarningAt reports a syntax problem at a source line.
func SyntaxWarningAt(line int, issue string) Diagnostic {
	return Diagnostic{
		Kind:       SyntaxWarning,
		Message:    "potential syntax issue: " + issue,
		Suggestion: "output will be generated, but check it for formatting issues",
		Line:       line,
	}
}

// SubsetFailedWarning reports a font which is embedded completely because
// it could not be subsetted.
func SubsetFailedWarning(fontname string, reason string) Diagnostic {
	return Diagnostic{
		Kind:       SubsetFailed,
		Message:    fmt.Sprintf("font '%s' cannot be subsetted: %s", fontname, reason),
		Suggestion: "the complete font is embedded, which enlarges the output",
	}
}

// MalformedInputWarning reports input which is damaged or does not look
// like text.
func MalformedInputWarning(reason string) Diagnostic {
	return Diagnostic{
		Kind:       MalformedInput,
		Message:    reason,
		Suggestion: "invalid bytes are shown as '\uFFFD'; check the file's encoding",
	}
}

// Filter returns the diagnostics of a kind.
func Filter(diags []Diagnostic, kind Kind) []Diagnostic {
	var r []Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			r = append(r, d)
		}
	}
	return r
}
