package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ResolvedRevision pairs an external revision number with the full commit
// hash whose message embeds it.
type ResolvedRevision struct {
	Revision int
	Hash     string
}

// ShortHash returns the first eight characters of the hash.
func (r ResolvedRevision) ShortHash() string {
	return ShortHash(r.Hash)
}

func (r ResolvedRevision) String() string {
	return fmt.Sprintf("revision=%d hash=%s", r.Revision, r.Hash)
}

// RevisionRequest selects one of the three resolution modes. The zero value
// means "latest".
type RevisionRequest struct {
	Revision    int    // 0 when unset
	PartialHash string // empty when unset
}

// Validate rejects requests that name both a revision and a hash.
func (r RevisionRequest) Validate() error {
	if r.Revision < 0 {
		return fmt.Errorf("%w: revision must be non-negative, got %d", ErrConfiguration, r.Revision)
	}
	if r.Revision > 0 && r.PartialHash != "" {
		return ErrAmbiguousInput
	}
	if r.PartialHash != "" && !partialHashPattern.MatchString(r.PartialHash) {
		return fmt.Errorf("%w: %q is not a partial commit hash", ErrConfiguration, r.PartialHash)
	}
	return nil
}

// RevisionExtractor pulls an embedded revision number out of a single commit
// message line.
type RevisionExtractor struct {
	Name    string
	pattern *regexp.Regexp
}

// Extract returns the revision embedded in line. ok is false when the
// pattern does not match; err is set when it matches but the number is not a
// valid non-negative int.
func (e RevisionExtractor) Extract(line string) (int, bool, error) {
	match := e.pattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false, nil
	}
	revision, err := parseRevision(match[1])
	if err != nil {
		return 0, true, err
	}
	return revision, true, nil
}

//nolint:gochecknoglobals // compiled once, read-only
var (
	// GitSvnExtractor matches "git-svn-id: http://host/svn/trunk@1234 <uuid>".
	GitSvnExtractor = RevisionExtractor{
		Name:    "git-svn-id",
		pattern: regexp.MustCompile(`git-svn-id: [^@ ]+@([0-9]+)`),
	}

	// SvnChangesExtractor matches "SVN changes up to revision 1234".
	SvnChangesExtractor = RevisionExtractor{
		Name:    "svn-changes",
		pattern: regexp.MustCompile(`SVN changes up to revision ([0-9]+)`),
	}

	// LKGRExtractor matches "LKGR w/ DEPS up to revision 1234".
	LKGRExtractor = RevisionExtractor{
		Name:    "lkgr",
		pattern: regexp.MustCompile(`LKGR w/ DEPS up to revision ([0-9]+)`),
	}

	// RevisionExtractors lists every historical message format in the order
	// they are tried on each line.
	RevisionExtractors = []RevisionExtractor{GitSvnExtractor, SvnChangesExtractor, LKGRExtractor}

	fullHashPattern    = regexp.MustCompile(`^(?:[0-9a-f]{40}|[0-9a-f]{64})$`)
	partialHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)
)

// ExtractRevision scans a commit message line by line and returns the
// revision from the first line that any known format matches.
func ExtractRevision(message string) (int, error) {
	for _, line := range strings.Split(message, "\n") {
		for _, extractor := range RevisionExtractors {
			revision, ok, err := extractor.Extract(line)
			if !ok {
				continue
			}
			if err != nil {
				return 0, fmt.Errorf("%w: malformed %s revision: %w", ErrRevisionNotFound, extractor.Name, err)
			}
			return revision, nil
		}
	}
	return 0, fmt.Errorf("%w: no revision number in commit message", ErrRevisionNotFound)
}

// EmbedsRevision reports whether any line of message embeds revision in one
// of the known formats. Unlike ExtractRevision it does not stop at the first
// matching line, so a commit quoting an older summary still qualifies.
func EmbedsRevision(message string, revision int) bool {
	for _, line := range strings.Split(message, "\n") {
		for _, extractor := range RevisionExtractors {
			if embedded, ok, err := extractor.Extract(line); ok && err == nil && embedded == revision {
				return true
			}
		}
	}
	return false
}

// RevisionMarker renders the revision-specific marker searched for in commit
// messages, e.g. "git-svn-id: http://skia.googlecode.com/svn/trunk@1234 ".
func RevisionMarker(format string, revision int) string {
	return fmt.Sprintf(format, revision)
}

// IsFullHash reports whether hash is a complete lowercase SHA-1 or SHA-256
// hex object name.
func IsFullHash(hash string) bool {
	return fullHashPattern.MatchString(hash)
}

// ShortHash returns the first eight characters of hash, or all of it when
// shorter.
func ShortHash(hash string) string {
	const short = 8
	if len(hash) <= short {
		return hash
	}
	return hash[:short]
}

func parseRevision(raw string) (int, error) {
	revision, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if revision < 0 {
		return 0, fmt.Errorf("negative revision %d", revision)
	}
	return revision, nil
}

// Commit is one entry of a commit log.
type Commit struct {
	Hash    string
	Message string
}
