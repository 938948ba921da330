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

// Package synctool runs the publishing pipeline end to end: discovery,
// extraction, transformation, materialization and the optional git steps.
package synctool

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/config"
	"github.com/walteh/cardsync/pkg/discover"
	"github.com/walteh/cardsync/pkg/git"
	"github.com/walteh/cardsync/pkg/log"
	"github.com/walteh/cardsync/pkg/materialize"
	"github.com/walteh/cardsync/pkg/precondition"
	"github.com/walteh/cardsync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📦 Result is the outcome of one sync run
type Result struct {
	RunID     string
	Bundle    *discover.Bundle
	Summary   *materialize.Summary
	Files     []status.FileInfo
	Committed bool
	Pushed    bool
}

// 🔧 Options adjusts a run beyond what the config holds
type Options struct {
	// Now stamps reports without a site identifier, time.Now when nil
	Now func() time.Time
}

// WithRunID tags the context logger with a fresh run identifier
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", id).Logger()
	return logger.WithContext(ctx), id
}

// 🚀 Sync publishes cfg.Source into cfg.Destination and runs the git steps
// the config asks for. Preconditions are all checked before anything in
// the destination changes.
func Sync(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	ctx, runID := WithRunID(ctx)
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	if cfg.Source == "" {
		return nil, precondition.Errorf("no source folder given, pass --src")
	}

	repo, err := git.Open(cfg.Destination)
	if err != nil {
		return nil, err
	}

	bundle, err := discover.Discover(ctx, cfg.Source, cfg.DiscoverOptions())
	if err != nil {
		return nil, err
	}
	for _, w := range bundle.Warnings {
		console.Warning(w)
	}

	console.StartSync(ctx, log.SyncOperation{
		Source:      bundle.Root,
		Destination: repo.Dir,
		Mode:        bundle.Plan.Mode().String(),
	})
	defer console.EndSync(ctx)

	mopts := cfg.MaterializeOptions()
	mopts.Now = opts.Now
	m := materialize.New(repo.Dir, mopts, logger)

	summary, err := m.Run(ctx, bundle)
	if err != nil {
		return nil, err
	}
	for _, w := range summary.Warnings {
		console.Warning(w)
	}

	res := &Result{
		RunID:   runID,
		Bundle:  bundle,
		Summary: summary,
		Files:   m.Status().ListFiles(ctx),
	}

	formatter := status.NewDefaultFileFormatter()
	console.Successf("Published %s: %s", summary.Mode, formatter.FormatSummary(m.Status().Counts()))
	if summary.Report != "" {
		if info, err := m.Status().GetFileInfo(ctx, summary.Report); err == nil {
			console.Infof("Report: %s (%s)", summary.Report, info.Status)
		}
	}
	console.Infof("Sites index: %s (%d features)", summary.Sites, summary.Features)

	if !cfg.Commit && !cfg.Push {
		return res, nil
	}

	committed, pushed, err := Publish(ctx, repo, cfg.Message, cfg.Commit, cfg.Push)
	res.Committed, res.Pushed = committed, pushed
	return res, err
}

// 📤 Publish stages everything in the repository, commits when asked and
// something is staged, and pushes when asked
func Publish(ctx context.Context, repo *git.Repo, message string, commit, push bool) (committed, pushed bool, err error) {
	console := log.FromContext(ctx)
	console.LogNewline()

	if push && !commit {
		console.Warningf("pushing without --commit, only commits already in %s are sent", repo.Dir)
	}

	out, err := repo.Status(ctx)
	if err != nil {
		return false, false, errors.Errorf("reading git status: %w", err)
	}
	console.Block("git status", out)

	if err := repo.AddAll(ctx); err != nil {
		return false, false, errors.Errorf("staging changes: %w", err)
	}

	if commit {
		staged, err := repo.HasStagedChanges(ctx)
		if err != nil {
			return false, false, errors.Errorf("checking staged changes: %w", err)
		}
		if staged {
			if err := repo.Commit(ctx, message); err != nil {
				return false, false, errors.Errorf("committing: %w", err)
			}
			committed = true
			console.Successf("Committed: %s", message)
		} else {
			console.Info("No changes to commit")
		}
	}

	if push {
		if err := repo.Push(ctx); err != nil {
			return committed, false, errors.Errorf("pushing: %w", err)
		}
		pushed = true
		console.Success("Pushed")
	}

	return committed, pushed, nil
}

// 🧹 Clean empties the destination healthcards folder and sites index
func Clean(ctx context.Context, cfg *config.Config) (int, error) {
	ctx, _ = WithRunID(ctx)

	repo, err := git.Open(cfg.Destination)
	if err != nil {
		return 0, err
	}

	console := log.FromContext(ctx)
	console.Header("cleaning " + repo.Dir)

	m := materialize.New(repo.Dir, cfg.MaterializeOptions(), zerolog.Ctx(ctx))
	n := m.Clean(ctx)
	console.Successf("Removed %d entries from %s", n, repo.Dir)
	return n, nil
}
