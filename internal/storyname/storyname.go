// Package storyname derives the identifiers used for discovered stories: the
// file namespace (FileID), the registry key (story ID) and the generated
// loader variable name (encoded story name).
package storyname

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	m "storylist.dev/pkg/storylist/internal/model"
)

const (
	// StoryDelimiter separates words inside a story ID. It is doubled between
	// the file namespace and the story name.
	StoryDelimiter = "-"
	// StoryEncodeDelimiter replaces StoryDelimiter in encoded story names so
	// they are legal identifiers.
	StoryEncodeDelimiter = "$"

	// DefaultStorySuffix is the marker stripped from file names before the
	// FileID is derived (button.stories.tsx -> button).
	DefaultStorySuffix = ".stories"

	digitPrefix = "_"
)

// ErrNotEncoded is returned when a name was not produced by EncodeStoryName.
var ErrNotEncoded = errors.New("not an encoded story name")

// FileID derives the namespace of a source entry: separators normalized,
// module suffix and story marker removed, segments joined with the story
// delimiter and case folded.
func FileID(entry m.SourceEntry, storySuffix string) string {
	p := entry.Slash()
	if suffix := m.ModuleSuffix(p); suffix != "" {
		p = strings.TrimSuffix(p, suffix)
	}

	if storySuffix != "" {
		p = strings.TrimSuffix(p, storySuffix)
	}

	segments := make([]string, 0, strings.Count(p, "/")+1)

	for _, segment := range strings.Split(p, "/") {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}

		segments = append(segments, segment)
	}

	return strings.ToLower(strings.Join(segments, StoryDelimiter))
}

// StoryID joins the kebab-cased FileID and binding name with the doubled
// story delimiter.
func StoryID(fileID, bindingName string) string {
	return KebabCase(fileID) + StoryDelimiter + StoryDelimiter + KebabCase(bindingName)
}

// EncodeStoryName turns a kebab-cased file namespace and story name into a
// legal identifier. Names that would start with a digit get a "_" prefix.
func EncodeStoryName(fileIDKebab, bindingKebab string) string {
	id := fileIDKebab + StoryDelimiter + StoryDelimiter + bindingKebab
	encoded := strings.ReplaceAll(id, StoryDelimiter, StoryEncodeDelimiter)

	if r, _ := utf8.DecodeRuneInString(encoded); unicode.IsDigit(r) {
		encoded = digitPrefix + encoded
	}

	return encoded
}

// DecodeStoryName recovers the kebab-cased file namespace and story name from
// an encoded story name.
func DecodeStoryName(encoded string) (string, string, error) {
	name := strings.TrimPrefix(encoded, digitPrefix)

	sep := StoryEncodeDelimiter + StoryEncodeDelimiter

	idx := strings.Index(name, sep)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrNotEncoded, encoded)
	}

	fileID := strings.ReplaceAll(name[:idx], StoryEncodeDelimiter, StoryDelimiter)
	binding := strings.ReplaceAll(name[idx+len(sep):], StoryEncodeDelimiter, StoryDelimiter)

	return fileID, binding, nil
}

// StoryIDFromEncoded maps an encoded story name back to its story ID.
func StoryIDFromEncoded(encoded string) (string, error) {
	fileID, binding, err := DecodeStoryName(encoded)
	if err != nil {
		return "", err
	}

	return fileID + StoryDelimiter + StoryDelimiter + binding, nil
}
