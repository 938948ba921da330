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

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what a run did to a destination file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusNew                  // File doesn't exist in destination
	StatusModified             // File exists but content differs
	StatusUnchanged            // File exists and content matches
	StatusDeleted              // File was deleted
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about a destination file
type FileInfo struct {
	Path     string     // Path relative to the destination root
	Kind     string     // report, image, html, landing, sites
	Status   FileStatus // What happened to it
	Size     int64      // File size in bytes
	Checksum string     // Content hash for diff detection
	Error    error      // Any error associated with this file
}

// 🔧 Manager tracks destination files and performs the writes that must not
// leave partial content behind
type Manager struct {
	baseDir   string          // Base directory for all operations
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo
	order []string

	total     int
	processed int
}

// 🏭 New creates a new status manager rooted at baseDir
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// Abs returns the absolute path for a destination relative path
func (m *Manager) Abs(path string) string {
	return filepath.Join(m.baseDir, filepath.FromSlash(path))
}

// 🔍 Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ChecksumFile hashes a file without loading it whole
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// 🔎 Compare reports what writing a file with the given checksum would do
func (m *Manager) Compare(ctx context.Context, path string, checksum string) FileStatus {
	existing, err := ChecksumFile(m.Abs(path))
	if err != nil {
		return StatusNew
	}
	if existing == checksum {
		return StatusUnchanged
	}
	return StatusModified
}

// Exists reports whether a destination file is present
func (m *Manager) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.Abs(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// 💾 WriteFileAtomic writes through a temp file in the same folder and renames
// it into place, so readers see the old content or the new, never a mix
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.Abs(path)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tmpPath, absPath); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// DeleteFile removes a destination file, a missing file is not an error
func (m *Manager) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(m.Abs(path)); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("deleting file: %w", err)
	}
	return nil
}

// RemoveDir removes a destination folder and everything in it
func (m *Manager) RemoveDir(ctx context.Context, path string) error {
	if err := os.RemoveAll(m.Abs(path)); err != nil {
		return errors.Errorf("removing directory: %w", err)
	}
	return nil
}

// 📝 Track records what happened to a file
func (m *Manager) Track(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Path = path
	if _, ok := m.files[path]; !ok {
		m.order = append(m.order, path)
	}
	m.files[path] = info

	msg := m.formatter.FormatFileOperation(
		path,
		info.Kind,
		info.Status.String(),
		info.Status == StatusNew,
		info.Status == StatusModified,
		info.Status == StatusDeleted,
	)
	if info.Error != nil {
		msg = m.formatter.FormatError(info.Error)
	}
	m.logger.Debug().Str("path", path).Str("kind", info.Kind).Str("status", info.Status.String()).Msg(msg)
}

// GetFileInfo returns what was tracked for a file
func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns tracked files in the order they were first tracked
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.order))
	for _, p := range m.order {
		files = append(files, m.files[p])
	}
	return files
}

// Counts tallies tracked files by status
func (m *Manager) Counts() map[FileStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[FileStatus]int)
	for _, info := range m.files {
		counts[info.Status]++
	}
	return counts
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	m.logger.Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}
