package ocr

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// AliasStager copies model files whose name differs from what tesseract
// expects into a private per-profile directory under the canonical name.
// Copies are reused across runs when the size still matches the source.
type AliasStager struct {
	root  string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAliasStager stages under root; an empty root uses <tmp>/hshj-tessdata
func NewAliasStager(root string) *AliasStager {
	if root == "" {
		root = filepath.Join(os.TempDir(), "hshj-tessdata")
	}
	return &AliasStager{root: root, locks: make(map[string]*sync.Mutex)}
}

// Root returns the staging root directory
func (s *AliasStager) Root() string {
	return s.root
}

func (s *AliasStager) profileLock(profileID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[profileID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[profileID] = l
	}
	return l
}

// Stage returns the data directory tesseract should use for profile, given
// the resolved path of its model file. Models already carrying the
// canonical name are used in place.
func (s *AliasStager) Stage(profile Profile, modelPath string) (string, bool, error) {
	if filepath.Base(modelPath) == profile.CanonicalModel() {
		return filepath.Dir(modelPath), false, nil
	}

	lock := s.profileLock(profile.ID)
	lock.Lock()
	defer lock.Unlock()

	src, err := os.Stat(modelPath)
	if err != nil {
		return "", false, fmt.Errorf("failed to stat model %s: %w", modelPath, err)
	}

	dir := filepath.Join(s.root, profile.ID)
	dst := filepath.Join(dir, profile.CanonicalModel())

	if st, err := os.Stat(dst); err == nil && st.Size() == src.Size() {
		return dir, false, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create alias directory: %w", err)
	}
	if err := copyAtomic(modelPath, dst); err != nil {
		return "", false, err
	}
	return dir, true, nil
}

// copyAtomic writes to a temp file in the destination directory and renames
// it into place so a concurrent reader never sees a partial model.
func copyAtomic(srcPath, dstPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open model: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), filepath.Base(dstPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp model: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to copy model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush model: %w", err)
	}
	if err := os.Rename(tmpName, dstPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to place model: %w", err)
	}
	return nil
}
