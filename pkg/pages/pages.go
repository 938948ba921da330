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

// Package pages finds where GitHub Pages serves the destination site.
package pages

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

// 🌐 Site is a resolved Pages location
type Site struct {
	Owner string
	Repo  string
	URL   string
	// FromAPI is false when the URL was derived from the owner and repository names
	FromAPI bool
}

// 🔍 Resolver looks up Pages sites through the GitHub API
type Resolver struct {
	client *github.Client
}

// 🏭 NewResolver creates a resolver, authenticated when token is not empty
func NewResolver(ctx context.Context, token string) *Resolver {
	if token == "" {
		return &Resolver{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return &Resolver{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// WithBaseURL points the resolver at another API root, such as GitHub Enterprise
func (r *Resolver) WithBaseURL(base string) (*Resolver, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Errorf("parsing api url: %w", err)
	}
	r.client.BaseURL = u
	return r, nil
}

var remotePattern = regexp.MustCompile(`^(?:(?:https?|ssh|git)://(?:[^@/]+@)?github\.com(?::\d+)?/|(?:[^@/]+@)?github\.com:)([A-Za-z0-9-]+)/([A-Za-z0-9._-]+?)(?:\.git)?/?$`)

// 🔗 ParseRemote returns the owner and repository of a GitHub remote URL
func ParseRemote(remote string) (owner, repo string, err error) {
	m := remotePattern.FindStringSubmatch(strings.TrimSpace(remote))
	if m == nil {
		return "", "", errors.Errorf("not a GitHub remote: %q", remote)
	}
	return m[1], m[2], nil
}

// FallbackURL is where Pages serves a repository under the default domain
func FallbackURL(owner, repo string) string {
	host := strings.ToLower(owner) + ".github.io"
	if strings.EqualFold(repo, host) {
		return "https://" + host + "/"
	}
	return "https://" + host + "/" + repo + "/"
}

// 🌍 Resolve asks the API where the remote's site is served. When the API
// cannot tell (no Pages, no access, rate limited) the default domain URL is
// returned instead.
func (r *Resolver) Resolve(ctx context.Context, remote string) (*Site, error) {
	logger := zerolog.Ctx(ctx)

	owner, repo, err := ParseRemote(remote)
	if err != nil {
		return nil, err
	}
	site := &Site{Owner: owner, Repo: repo}

	info, _, err := r.client.Repositories.GetPagesInfo(ctx, owner, repo)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Errorf("getting pages info: %w", ctx.Err())
		}
		logger.Debug().Err(err).Str("owner", owner).Str("repo", repo).Msg("pages api lookup failed, using default domain")
		site.URL = FallbackURL(owner, repo)
		return site, nil
	}

	site.URL = info.GetHTMLURL()
	if site.URL == "" {
		site.URL = FallbackURL(owner, repo)
		return site, nil
	}
	site.FromAPI = true
	return site, nil
}
