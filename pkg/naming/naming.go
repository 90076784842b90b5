// Package naming derives icon identifiers and search tags from source file
// names.
//
// Two conventions are supported and selected by the presence of the
// [TagSeparator]:
//
//	user@person,avatar@svg    tagged: id "user", tags [user person avatar]
//	arrow_left_s24.svg        legacy: id "arrow_left", no tags
//
// Each convention has its own parser ([ParseTagged], [ParseLegacy]) and
// [Extract] dispatches between them. Every failure is a MALFORMED_NAME error.
package naming

import (
	"path"
	"strings"

	"github.com/matzehuels/pangolin/pkg/errors"
)

const (
	// TagSeparator separates id, tag list and extension in tagged names.
	TagSeparator = "@"

	// TagListSeparator separates tags inside the tag segment.
	TagListSeparator = ","

	// LegacySeparator separates words and the size suffix in legacy names.
	LegacySeparator = "_"

	// DefaultExt is used when a name carries no usable extension.
	DefaultExt = "svg"
)

// Convention identifies the naming scheme a file name was parsed with.
type Convention int

const (
	// Legacy is the underscore scheme: part1_part2_suffix.ext.
	Legacy Convention = iota
	// Tagged is the annotated scheme: name@tag1,tag2@ext.
	Tagged
)

// String returns the convention name.
func (c Convention) String() string {
	switch c {
	case Tagged:
		return "tagged"
	default:
		return "legacy"
	}
}

// Name is the result of parsing a source file name.
type Name struct {
	ID         string     // canonical icon identifier
	Tags       []string   // search tags; [ID, ...] when tagged, empty when legacy
	Convention Convention // scheme the name was parsed with
	Ext        string     // file extension without the leading dot
}

// DetectConvention reports which convention fileName uses.
func DetectConvention(fileName string) Convention {
	if strings.Contains(fileName, TagSeparator) {
		return Tagged
	}
	return Legacy
}

// Extract parses fileName with the convention it uses.
func Extract(fileName string) (Name, error) {
	if DetectConvention(fileName) == Tagged {
		return ParseTagged(fileName)
	}
	return ParseLegacy(fileName)
}

// ParseTagged parses a name@tag1,tag2,...@ext file name.
//
// The first segment is the id and the last one the extension marker; every
// segment in between is split on commas into tags. Empty tags are dropped.
// The returned tags always start with the id.
func ParseTagged(fileName string) (Name, error) {
	segments := strings.Split(fileName, TagSeparator)
	if len(segments) < 2 {
		return Name{}, errors.New(errors.ErrCodeMalformedName,
			"%s: tagged name needs at least 2 %q-separated segments", fileName, TagSeparator)
	}

	id := segments[0]
	if err := validateID(fileName, id); err != nil {
		return Name{}, err
	}

	tags := []string{id}
	for _, segment := range segments[1 : len(segments)-1] {
		for _, tag := range strings.Split(segment, TagListSeparator) {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	return Name{
		ID:         id,
		Tags:       tags,
		Convention: Tagged,
		Ext:        normalizeExt(segments[len(segments)-1]),
	}, nil
}

// ParseLegacy parses an underscore-delimited file name whose last segment
// is a size/format suffix (e.g. "_s24.svg"). The suffix is dropped and the
// remaining segments form the id. Legacy names carry no tags.
func ParseLegacy(fileName string) (Name, error) {
	segments := strings.Split(fileName, LegacySeparator)
	id := strings.Join(segments[:len(segments)-1], LegacySeparator)
	if err := validateID(fileName, id); err != nil {
		return Name{}, err
	}

	return Name{
		ID:         id,
		Tags:       []string{},
		Convention: Legacy,
		Ext:        normalizeExt(path.Ext(fileName)),
	}, nil
}

// ArchiveName returns the canonical per-icon file name {id}_s24.{ext}.
func (n Name) ArchiveName() string {
	ext := n.Ext
	if ext == "" {
		ext = DefaultExt
	}
	return n.ID + LegacySeparator + "s24." + ext
}

func validateID(fileName, id string) error {
	if id == "" {
		return errors.New(errors.ErrCodeMalformedName, "%s: empty icon id", fileName)
	}
	if err := errors.ValidateIconID(id); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedName, err, "%s", fileName)
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return DefaultExt
	}
	return ext
}
