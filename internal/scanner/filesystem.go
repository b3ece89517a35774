package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan recursively scans a directory for installer packages. Bundle
// packages are directories, so matching directories are reported and not
// descended into.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedInstaller, error) {
	var installers []ScannedInstaller

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == dir {
			return nil
		}

		kind, err := s.DetectKind(path)
		if err != nil {
			logrus.Warnf("Failed to detect installer kind for %s: %v", path, err)
			return nil
		}

		if kind == KindUnknown {
			return nil
		}

		logrus.Debugf("Found %s installer package: %s", kind, path)

		installers = append(installers, ScannedInstaller{
			Path: path,
			Kind: kind,
			Size: info.Size(),
		})

		// Don't look for nested installers inside a bundle package
		if info.IsDir() {
			return filepath.SkipDir
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Infof("Found %d installer packages in %s", len(installers), dir)
	return installers, nil
}

// DetectKind determines the installer kind of a path
func (s *FileSystemScanner) DetectKind(path string) (InstallerKind, error) {
	return DetectInstallerKind(path)
}
