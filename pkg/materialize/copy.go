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

package materialize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultRetries is how many times a locked destination is retried
	DefaultRetries = 5
	// DefaultDelay is the fixed wait between lock retries
	DefaultDelay = 500 * time.Millisecond
)

// Remediation tells the user how to release a locked destination file
const Remediation = `Fix:
  1) Close any browser tab opened from the local site (file:///...)
  2) Close any program previewing index.html or a health card
  3) Re-run the same command.`

// 🔒 FileLockError means a destination file stayed locked by another process
type FileLockError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *FileLockError) Error() string {
	return fmt.Sprintf("%s is in use by another program (gave up after %d attempts): %v\n%s", e.Path, e.Attempts, e.Err, Remediation)
}

func (e *FileLockError) Unwrap() error {
	return e.Err
}

// 📋 Copier copies files into the destination, skipping self copies and
// retrying destinations another process holds open
type Copier struct {
	Retries int
	Delay   time.Duration

	sleep    func(ctx context.Context, d time.Duration) error
	copyFile func(src, dst string) error
}

// 🏭 NewCopier creates a copier with a fixed retry budget
func NewCopier(retries int, delay time.Duration) *Copier {
	if retries < 0 {
		retries = 0
	}
	return &Copier{
		Retries:  retries,
		Delay:    delay,
		sleep:    sleepContext,
		copyFile: copyFile,
	}
}

// Copy copies src to dst, creating dst's parent first. It returns false
// without touching anything when both paths resolve to the same file.
func (c *Copier) Copy(ctx context.Context, src, dst string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, errors.Errorf("creating parent directories: %w", err)
	}
	if SameFile(src, dst) {
		zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", dst).Msg("source and destination are the same file, skipping")
		return false, nil
	}
	if err := c.Do(ctx, dst, func() error { return c.copyFile(src, dst) }); err != nil {
		return false, err
	}
	return true, nil
}

// 🔁 Do runs fn, retrying with a fixed delay while it fails because path is
// locked. Other failures are returned at once.
func (c *Copier) Do(ctx context.Context, path string, fn func() error) error {
	logger := zerolog.Ctx(ctx)
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsLocked(err) {
			return err
		}
		if attempt > c.Retries {
			return errors.WithStack(&FileLockError{Path: path, Attempts: attempt, Err: err})
		}
		logger.Warn().Err(err).Str("path", path).Int("attempt", attempt).Dur("delay", c.Delay).Msg("destination locked, retrying")
		if err := c.sleep(ctx, c.Delay); err != nil {
			return errors.Errorf("waiting to retry %s: %w", path, err)
		}
	}
}

// SameFile reports whether two paths resolve to one file on disk
func SameFile(a, b string) bool {
	ra, rb := resolve(a), resolve(b)
	if ra == rb {
		return true
	}
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

func resolve(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// copyFile copies content and modification time
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("reading source file info: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("copying file content: %w", err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("setting modification time: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
