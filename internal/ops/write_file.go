package ops

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/errors"
)

// WriteFile validates path with ValidatePath and writes data there
// through a temp file and rename, so an existing file survives a failed
// write. It returns the absolute path written.
func WriteFile(path, exportsDir string, data []byte, cfg *config.Config) (string, error) {
	if err := ValidatePath(path, exportsDir, cfg); err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0700); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := absPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) {
			return "", err
		}
		return "", errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return "", errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return "", errors.NewInternal(err)
	}
	// Close before rename; Windows requires it.
	if err := file.Close(); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink swapped in since validation.
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewInvalidRequest("path must not be a symlink")
	}

	// On Windows Rename fails when the destination exists. The existing
	// file is kept rather than risking a delete then rename.
	if err := os.Rename(tempPath, absPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(absPath); statErr == nil {
				return "", errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return "", errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return absPath, nil
}
