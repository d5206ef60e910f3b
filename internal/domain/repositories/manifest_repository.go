package repositories

import "github.com/rios0rios0/rolldeps/internal/domain/entities"

// ManifestRepository rewrites the pinned fields of a dependency manifest.
type ManifestRepository interface {
	// Patch sets the revision and hash fields of the manifest at path. The
	// original file is only replaced once the rewrite fully succeeded.
	Patch(path string, fields entities.ManifestFields, revision int, hash string) error
}
