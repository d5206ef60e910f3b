package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

const tempPrefix = "skia_DEPS_ROLL_tmp_"

// DepsRepository patches DEPS-style manifests in place.
type DepsRepository struct{}

// NewDepsRepository returns a DepsRepository.
func NewDepsRepository() *DepsRepository {
	return &DepsRepository{}
}

var _ repositories.ManifestRepository = (*DepsRepository)(nil)

// Patch streams path line by line into a sibling temporary file, rewriting
// the pinned fields, then renames the temporary file over path. Line endings,
// a missing final newline and the file mode are preserved.
func (d *DepsRepository) Patch(path string, fields entities.ManifestFields, revision int, hash string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempPrefix)
	if err != nil {
		return fmt.Errorf("failed to create temporary manifest: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err == nil {
			return
		}
		_ = tmp.Close()
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warnf("Failed to remove %s: %v", tmpName, rmErr)
		}
	}()

	if err = rewrite(src, tmp, fields, revision, hash); err != nil {
		return fmt.Errorf("failed to rewrite manifest %s: %w", path, err)
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set manifest mode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary manifest: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

func rewrite(src io.Reader, dst io.Writer, fields entities.ManifestFields, revision int, hash string) error {
	reader := bufio.NewReader(src)
	writer := bufio.NewWriter(dst)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if _, err := writer.WriteString(fields.PatchLine(line, revision, hash)); err != nil {
				return err
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	return writer.Flush()
}
