package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// baselineFile is the file name each module's snapshot is stored under.
const baselineFile = "current.txt"

// FileSystemStore keeps baselines as <root>/<module>/current.txt.
type FileSystemStore struct {
	rootDir string
}

// NewFileSystemStore creates a filesystem store rooted at rootDir.
func NewFileSystemStore(rootDir string) (*FileSystemStore, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("filesystem root is required for filesystem storage")
	}
	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemStore{rootDir: rootDir}, nil
}

func (s *FileSystemStore) Name() string {
	return "filesystem"
}

// Path returns the file a module's baseline lives in.
func (s *FileSystemStore) Path(module string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(module), baselineFile)
}

// Get implements BaselineReader.Get
func (s *FileSystemStore) Get(ctx context.Context, module string) ([]byte, error) {
	if err := ValidateModuleName(module); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(module))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, module)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}
	return data, nil
}

// Put writes the snapshot through a temporary file so readers never see a
// partial baseline.
func (s *FileSystemStore) Put(ctx context.Context, module string, snapshot []byte) error {
	if err := ValidateModuleName(module); err != nil {
		return err
	}
	path := s.Path(module)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create module directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".current-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create baseline file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write baseline file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}
	return nil
}

// List implements BaselineReader.List
func (s *FileSystemStore) List(ctx context.Context) ([]string, error) {
	var modules []string
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != baselineFile {
			return nil
		}
		rel, err := filepath.Rel(s.rootDir, filepath.Dir(path))
		if err != nil || rel == "." {
			return nil
		}
		modules = append(modules, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}
	sort.Strings(modules)
	return modules, nil
}

// Ping checks that the root directory is still a readable directory.
func (s *FileSystemStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.rootDir)
	}
	return nil
}

// ModuleForPath maps a baseline file path back to its module name. It
// reports false for files outside the store or not named current.txt.
func (s *FileSystemStore) ModuleForPath(path string) (string, bool) {
	rel, err := filepath.Rel(s.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.Base(rel) != baselineFile {
		return "", false
	}
	module := filepath.ToSlash(filepath.Dir(rel))
	if module == "." {
		return "", false
	}
	return module, true
}
