package entities

import (
	"fmt"
	"regexp"
)

// reviewURLPattern picks the first URL out of `git cl issue` output.
var reviewURLPattern = regexp.MustCompile(`(https?://[^) ]+)`) //nolint:gochecknoglobals // compiled once

// DownstreamBase describes the downstream tip a roll is based on. Revision is
// -1 when the tip embeds no external revision.
type DownstreamBase struct {
	Hash     string
	Revision int
}

func (b DownstreamBase) revisionText() string {
	if b.Revision < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", b.Revision)
}

// ControlMessage is the commit message of the whitespace-only control change.
// The short base hash gives each control change a unique subject.
func ControlMessage(base DownstreamBase) string {
	short := ShortHash(base.Hash)
	return fmt.Sprintf(
		"whitespace change %s\n\n"+
			"Chromium base revision: %s / %s\n\n"+
			"This CL was created by Skia's roll_deps script.\n",
		short, base.revisionText(), short,
	)
}

// RollMessage is the commit message of the manifest roll.
func RollMessage(base DownstreamBase, oldRevision int, target ResolvedRevision, controlURL string) string {
	return fmt.Sprintf(
		"roll skia DEPS to %d\n\n"+
			"Chromium base revision: %s / %s\n"+
			"Old Skia revision: %d\n"+
			"New Skia revision: %d\n"+
			"Control CL: %s\n\n"+
			"This CL was created by Skia's roll_deps script.\n",
		target.Revision, base.revisionText(), ShortHash(base.Hash),
		oldRevision, target.Revision, controlURL,
	)
}

// ControlBranchName is the kept branch name of the control change.
func ControlBranchName(base DownstreamBase) string {
	return "control_" + ShortHash(base.Hash)
}

// RollBranchName is the kept branch name of the manifest roll.
func RollBranchName(base DownstreamBase, target ResolvedRevision) string {
	return fmt.Sprintf("roll_%d_%s", target.Revision, ShortHash(base.Hash))
}

// ReviewURL returns the first URL in a review identifier, or "?".
func ReviewURL(issue string) string {
	if match := reviewURLPattern.FindString(issue); match != "" {
		return match
	}
	return "?"
}
