// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transfer copies a file into the backup directory and then moves it
// into the target directory.
package transfer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🚚 Transferor moves single files out of the input directory
type Transferor struct {
	// rename is swapped in tests to simulate rename failures.
	rename func(oldpath, newpath string) error
}

// 🏭 New creates a transferor
func New() *Transferor {
	return &Transferor{rename: os.Rename}
}

// 🚀 Transfer copies file into backupDir, replacing any file of the same
// name, and then moves it into targetDir, refusing to replace an existing
// file there. The move is never attempted when the copy fails. Every error is
// a *Failure.
func (t *Transferor) Transfer(ctx context.Context, file, backupDir, targetDir string) error {
	logger := zerolog.Ctx(ctx)
	name := filepath.Base(file)

	backupPath := filepath.Join(backupDir, name)
	if err := copyFileAtomic(file, backupPath); err != nil {
		return &Failure{Op: OpCopy, Path: file, Err: err}
	}
	logger.Trace().Str("file", file).Str("backup", backupPath).Msg("copied to backup")

	targetPath := filepath.Join(targetDir, name)
	if err := t.move(file, targetPath); err != nil {
		return &Failure{Op: OpMove, Path: file, Err: err}
	}
	logger.Trace().Str("file", file).Str("target", targetPath).Msg("moved to target")

	return nil
}

// 📦 move renames src to dst, falling back to copy and remove only when src
// and dst are on different filesystems. dst is never replaced, and a failed
// move leaves src in place and dst absent.
func (t *Transferor) move(src, dst string) error {
	if err := ensureAbsent(dst); err != nil {
		return err
	}

	err := t.rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return errors.Errorf("renaming file: %w", err)
	}

	tmp, err := copyToTemp(src, filepath.Dir(dst))
	if err != nil {
		return errors.Errorf("copying across filesystems: %w", err)
	}

	// Link fails if dst appeared in the meantime, unlike rename.
	if err := os.Link(tmp, dst); err != nil {
		os.Remove(tmp)
		if os.IsExist(err) {
			return errors.Errorf("%s: %w", dst, ErrTargetExists)
		}
		return errors.Errorf("publishing target file: %w", err)
	}
	os.Remove(tmp)

	if err := os.Remove(src); err != nil {
		if rerr := os.Remove(dst); rerr != nil {
			return errors.Errorf("removing source after copy (target copy %s left behind: %s): %w", dst, rerr.Error(), err)
		}
		return errors.Errorf("removing source after copy: %w", err)
	}
	return nil
}

func ensureAbsent(path string) error {
	_, err := os.Lstat(path)
	if err == nil {
		return errors.Errorf("%s: %w", path, ErrTargetExists)
	}
	if !os.IsNotExist(err) {
		return errors.Errorf("checking target: %w", err)
	}
	return nil
}

// 💾 copyFileAtomic copies src to dst through a temp file in dst's directory,
// so dst is either the old file or the complete new one.
func copyFileAtomic(src, dst string) error {
	tmp, err := copyToTemp(src, filepath.Dir(dst))
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// copyToTemp copies src into a new temp file inside dir, keeping the source
// mode and modification time, and returns the temp file path.
func copyToTemp(src, dir string) (string, error) {
	source, err := os.Open(src)
	if err != nil {
		return "", errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return "", errors.Errorf("reading source file info: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(src)+".*.tmp")
	if err != nil {
		return "", errors.Errorf("creating temp file: %w", err)
	}
	tmp := tmpFile.Name()

	if _, err := io.Copy(tmpFile, source); err != nil {
		tmpFile.Close()
		os.Remove(tmp)
		return "", errors.Errorf("copying file content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmp)
		return "", errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		os.Remove(tmp)
		return "", errors.Errorf("setting file mode: %w", err)
	}
	if err := os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		os.Remove(tmp)
		return "", errors.Errorf("setting file times: %w", err)
	}

	return tmp, nil
}
