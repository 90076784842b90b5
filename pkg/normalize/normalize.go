// Package normalize strips exported SVG documents down to their drawable
// path fragment.
//
// Icons are expected to come from a single export tool that always writes
// the same boilerplate:
//
//	<svg ...><defs><style>...</style></defs><path class="a" d="..."/></svg>
//
// [Normalize] keeps everything between the closing </defs> and the final
// </svg> and removes the tool-generated class attributes. The transform is
// textual on purpose; the input shape is checked explicitly and anything
// else is rejected with a MALFORMED_SOURCE error instead of being guessed at.
package normalize

import (
	"regexp"
	"strings"

	"github.com/matzehuels/pangolin/pkg/errors"
)

var (
	svgOpen   = regexp.MustCompile(`(?i)<svg[\s>]`)
	defsOpen  = regexp.MustCompile(`(?i)<defs[\s>]`)
	defsClose = regexp.MustCompile(`(?i)</defs\s*>`)
	svgClose  = regexp.MustCompile(`(?i)</svg\s*>`)

	// classAttr matches a double-quoted class attribute, shortest match.
	classAttr = regexp.MustCompile(`(?i)class="[^"]*"`)
)

// Normalize returns the path fragment of raw with all class attributes
// removed. Whitespace and attribute order are preserved verbatim.
//
// The result never contains a <defs block, an <svg> element or a class="
// attribute; inputs that would violate this fail with MALFORMED_SOURCE.
func Normalize(raw string) (string, error) {
	frag, err := Fragment(raw)
	if err != nil {
		return "", err
	}
	return StripClasses(frag)
}

// Fragment returns the candidate path fragment of raw: the text between the
// end of the first </defs> block following the <svg> open tag and the last
// </svg> close tag.
func Fragment(raw string) (string, error) {
	open := svgOpen.FindStringIndex(raw)
	if open == nil {
		return "", errors.New(errors.ErrCodeMalformedSource, "missing <svg> open tag")
	}

	rest := raw[open[1]:]
	defs := defsOpen.FindStringIndex(rest)
	if defs == nil {
		return "", errors.New(errors.ErrCodeMalformedSource, "missing <defs> block")
	}

	closeDefs := defsClose.FindStringIndex(rest[defs[1]:])
	if closeDefs == nil {
		return "", errors.New(errors.ErrCodeMalformedSource, "unterminated <defs> block")
	}
	start := open[1] + defs[1] + closeDefs[1]

	closes := svgClose.FindAllStringIndex(raw, -1)
	if len(closes) == 0 {
		return "", errors.New(errors.ErrCodeMalformedSource, "missing </svg> close tag")
	}
	end := closes[len(closes)-1][0]
	if end < start {
		return "", errors.New(errors.ErrCodeMalformedSource, "</svg> closes before </defs>")
	}

	frag := raw[start:end]
	if defsOpen.MatchString(frag) || strings.Contains(strings.ToLower(frag), "<defs/") {
		return "", errors.New(errors.ErrCodeMalformedSource, "more than one <defs> block")
	}
	if svgOpen.MatchString(frag) || svgClose.MatchString(frag) || strings.Contains(strings.ToLower(frag), "<svg/") {
		return "", errors.New(errors.ErrCodeMalformedSource, "nested <svg> element")
	}
	return frag, nil
}

// StripClasses removes every class="..." attribute from frag. Only the
// attribute text itself is removed; surrounding whitespace is kept.
func StripClasses(frag string) (string, error) {
	out := classAttr.ReplaceAllString(frag, "")
	if strings.Contains(strings.ToLower(out), `class="`) {
		return "", errors.New(errors.ErrCodeMalformedSource, "unterminated class attribute")
	}
	return out, nil
}
