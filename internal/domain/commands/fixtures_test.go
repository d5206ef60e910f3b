//go:build unit

package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	doubles "github.com/rios0rios0/rolldeps/test/infrastructure/repositorydoubles"
)

const (
	upstreamRef    = "refs/remotes/origin/master"
	upstreamHash   = "abcdef0123456789abcdef0123456789abcdef01"
	olderHash      = "ffff000011112222333344445555666677778888"
	downstreamHash = "0123456789abcdef0123456789abcdef01234567"
)

func svnMessage(subject string, revision int) string {
	return subject + "\n\n" + strings.TrimSpace(entities.RevisionMarker(entities.DefaultRevisionFormat, revision)) +
		" 2bbb7eff-a529-9590-31e7-b0007b416f81\n"
}

// newUpstream is an upstream whose tip is revision 12345.
func newUpstream() *doubles.SpyGitRepository {
	upstream := doubles.NewSpyGitRepository("/tmp/upstream", "master")
	upstream.Messages[upstreamRef] = svnMessage("Newest", 12345)
	upstream.Hashes[upstreamRef] = upstreamHash
	upstream.Recent = []entities.Commit{
		{Hash: upstreamHash, Message: svnMessage("Newest", 12345)},
		{Hash: olderHash, Message: svnMessage("Older", 12000)},
	}
	return upstream
}

// newDownstream is a clean working copy on master whose DEPS pins 12000.
func newDownstream(t *testing.T) *doubles.SpyGitRepository {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "whitespace_file.txt"), []byte("ws\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DEPS"), []byte("vars = {}\n"), 0o600))

	downstream := doubles.NewSpyGitRepository(dir, "master")
	downstream.Files["origin/master:DEPS"] = "vars = {\n  \"skia_revision\": \"12000\",\n  \"skia_hash\": \"" + olderHash + "\",\n}\n"
	downstream.Hashes[upstreamRef] = downstreamHash
	downstream.Messages[upstreamRef] = svnMessage("Chromium tip", 240000)
	downstream.Messages["HEAD"] = svnMessage("Chromium tip", 240000)
	return downstream
}
