//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// PatchCall is one recorded ManifestRepository.Patch call.
type PatchCall struct {
	Path     string
	Fields   entities.ManifestFields
	Revision int
	Hash     string
}

// SpyManifestRepository records patches without touching the file.
type SpyManifestRepository struct {
	PatchErr error
	Patches  []PatchCall
}

var _ repositories.ManifestRepository = (*SpyManifestRepository)(nil)

func (s *SpyManifestRepository) Patch(path string, fields entities.ManifestFields, revision int, hash string) error {
	s.Patches = append(s.Patches, PatchCall{Path: path, Fields: fields, Revision: revision, Hash: hash})
	return s.PatchErr
}
