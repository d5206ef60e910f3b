package entities

import (
	"fmt"
	"regexp"
	"strconv"
)

// ManifestFields describes the two pinned fields of a dependency inside a
// DEPS-style manifest, e.g. `"skia_revision": "1234",` and
// `"skia_hash": "abcd...",`.
type ManifestFields struct {
	Name        string
	revision    *regexp.Regexp
	hash        *regexp.Regexp
	currentRev  *regexp.Regexp
	revisionKey string
	hashKey     string
}

// NewManifestFields builds the field patterns for the named dependency.
func NewManifestFields(name string) ManifestFields {
	revisionKey := fmt.Sprintf(`"%s_revision"`, name)
	hashKey := fmt.Sprintf(`"%s_hash"`, name)
	quotedRev := regexp.QuoteMeta(revisionKey)
	return ManifestFields{
		Name:        name,
		revision:    regexp.MustCompile(quotedRev + `: "[0-9]*",`),
		hash:        regexp.MustCompile(regexp.QuoteMeta(hashKey) + `: "[0-9a-f]*",`),
		currentRev:  regexp.MustCompile(quotedRev + `: "([0-9]+)",`),
		revisionKey: revisionKey,
		hashKey:     hashKey,
	}
}

// PatchLine rewrites the first revision field and the first hash field found
// in line. Every other byte of the line is kept.
func (f ManifestFields) PatchLine(line string, revision int, hash string) string {
	line = replaceFirst(f.revision, line, fmt.Sprintf(`%s: "%d",`, f.revisionKey, revision))
	return replaceFirst(f.hash, line, fmt.Sprintf(`%s: "%s",`, f.hashKey, hash))
}

// CurrentRevision returns the revision pinned in manifest content.
func (f ManifestFields) CurrentRevision(content string) (int, error) {
	match := f.currentRev.FindStringSubmatch(content)
	if match == nil {
		return 0, fmt.Errorf("%w: manifest has no %s field", ErrRevisionNotFound, f.revisionKey)
	}
	revision, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed %s field: %w", ErrRevisionNotFound, f.revisionKey, err)
	}
	return revision, nil
}

func replaceFirst(pattern *regexp.Regexp, s, replacement string) string {
	loc := pattern.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + replacement + s[loc[1]:]
}
