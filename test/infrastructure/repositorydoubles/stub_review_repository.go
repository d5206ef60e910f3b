//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"io"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// StubReviewRepository returns Issues in order, one per Issue call.
type StubReviewRepository struct {
	UploadErr error
	Issues    []string
	IssueErr  error
	TryErr    error

	UploadCount       int
	IssueCount        int
	TryRevisions      []int
	TryBots           [][]string
	InstructedBranches []string
}

var _ repositories.ReviewRepository = (*StubReviewRepository)(nil)

func (s *StubReviewRepository) Upload(_ context.Context) error {
	s.UploadCount++
	return s.UploadErr
}

func (s *StubReviewRepository) Issue(_ context.Context) (string, error) {
	s.IssueCount++
	if s.IssueErr != nil {
		return "", s.IssueErr
	}
	if s.IssueCount > len(s.Issues) {
		return "", nil
	}
	return s.Issues[s.IssueCount-1], nil
}

func (s *StubReviewRepository) Try(_ context.Context, revision int, bots []string) error {
	s.TryRevisions = append(s.TryRevisions, revision)
	s.TryBots = append(s.TryBots, bots)
	return s.TryErr
}

func (s *StubReviewRepository) PrintInstructions(out io.Writer, branch string, revision int, bots []string) {
	s.InstructedBranches = append(s.InstructedBranches, branch)
	fmt.Fprintf(out, "upload %s (revision %d, %d bots)\n", branch, revision, len(bots))
}

// StubReviewProvider hands out one shared StubReviewRepository.
type StubReviewProvider struct {
	Review *StubReviewRepository

	OpenedDirs []string
	Opened     []entities.ReviewOptions
}

var _ repositories.ReviewProvider = (*StubReviewProvider)(nil)

func (p *StubReviewProvider) Open(dir string, opts entities.ReviewOptions) repositories.ReviewRepository {
	p.OpenedDirs = append(p.OpenedDirs, dir)
	p.Opened = append(p.Opened, opts)
	return p.Review
}
