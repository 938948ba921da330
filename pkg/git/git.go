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

// Package git drives the git command line in the destination site: staging
// everything, committing when something is staged, and pushing.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/precondition"
	"gitlab.com/tozd/go/errors"
)

// ⚠️ CommandError is a git invocation that exited non zero
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("git %s exited %d", strings.Join(e.Args, " "), e.ExitCode)
	}
	return fmt.Sprintf("git %s exited %d:\n%s", strings.Join(e.Args, " "), e.ExitCode, out)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// 📁 Repo is a git working tree
type Repo struct {
	Dir string
	// Binary is the git executable, "git" from PATH by default
	Binary string
}

// 🔍 Open checks dir is the root of a git working tree
func Open(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving repository path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, precondition.Errorf("destination is not a folder: %s", abs)
	}
	// a worktree or submodule has a .git file instead of a folder
	if _, err := os.Stat(filepath.Join(abs, ".git")); err != nil {
		return nil, precondition.Errorf("destination is not a git repository (no .git): %s", abs)
	}
	return &Repo{Dir: abs, Binary: "git"}, nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	logger := zerolog.Ctx(ctx)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug().Strs("args", args).Str("dir", r.Dir).Msg("running git")
	err := cmd.Run()
	if err == nil {
		return out.String(), nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return "", precondition.Errorf("%s was not found on PATH", r.Binary)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.String(), errors.WithStack(&CommandError{
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Output:   out.String(),
			Err:      err,
		})
	}
	return out.String(), errors.Errorf("running git %s: %w", strings.Join(args, " "), err)
}

// Status returns the human readable working tree status
func (r *Repo) Status(ctx context.Context) (string, error) {
	return r.run(ctx, "status")
}

// 📥 AddAll stages every change in the working tree, deletions included
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", "-A")
	return err
}

// HasStagedChanges reports whether the index differs from HEAD
func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := r.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
		return true, nil
	}
	return false, err
}

// 💾 Commit records the staged changes
func (r *Repo) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("commit message is empty")
	}
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// 🚀 Push pushes the current branch to its configured remote
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, "push")
	return err
}

// RemoteURL returns the fetch URL of a named remote
func (r *Repo) RemoteURL(ctx context.Context, name string) (string, error) {
	out, err := r.run(ctx, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
