// Package source turns a declared version into a fetch descriptor: an archive
// URL with its checksum, or a git repository with a ref. Fetching itself is
// left to the caller.
package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/platoengine/recipe/internal/core/recipe"
)

// Kind says how a version's content is obtained.
type Kind string

const (
	Archive Kind = "archive"
	Git     Kind = "git"
)

// Fetch describes where the content of one version lives.
type Fetch struct {
	Kind       Kind
	URL        string
	Checksum   string // "sha256:<hex>" for archives
	Ref        string
	RefKind    string // branch, tag or commit
	Submodules bool
	Canonical  string // github:owner/repo@ref when hosted on GitHub
}

// Integrity is the identity recorded in lockfiles: the archive checksum, or
// the git ref prefixed with its kind.
func (f Fetch) Integrity() string {
	if f.Kind == Archive {
		return f.Checksum
	}
	return f.RefKind + ":" + f.Ref
}

func (f Fetch) String() string {
	if f.Kind == Archive {
		return f.URL
	}
	s := fmt.Sprintf("%s (%s %s)", f.URL, f.RefKind, f.Ref)
	if f.Submodules {
		s += " with submodules"
	}
	return s
}

// Describe returns the fetch descriptor for version v of p.
func Describe(p *recipe.Package, v recipe.Version) (Fetch, error) {
	if v.SHA256 != "" {
		u, err := archiveURL(p, v)
		if err != nil {
			return Fetch{}, err
		}
		f := Fetch{Kind: Archive, URL: u, Checksum: "sha256:" + strings.ToLower(v.SHA256)}
		if loc, err := ParseSourceURL(u); err == nil {
			f.Canonical = loc.Canonical(v.ID.String())
		}
		return f, nil
	}

	if p.Git == "" {
		return Fetch{}, fmt.Errorf("%s@%s: version uses a git ref but the recipe has no git url", p.Name, v.ID)
	}
	f := Fetch{Kind: Git, URL: p.Git, Submodules: v.Submodules}
	switch {
	case v.Commit != "":
		f.Ref, f.RefKind = v.Commit, "commit"
	case v.Tag != "":
		f.Ref, f.RefKind = v.Tag, "tag"
	case v.Branch != "":
		f.Ref, f.RefKind = v.Branch, "branch"
	default:
		return Fetch{}, fmt.Errorf("%s@%s: version has no checksum or git ref", p.Name, v.ID)
	}
	if loc, err := ParseSourceURL(p.Git); err == nil {
		if strings.HasPrefix(p.Git, "github:") {
			f.URL = loc.CloneURL()
		}
		f.Canonical = loc.Canonical(f.Ref)
	}
	return f, nil
}

// archiveURL picks the download URL of an archive version: the version's own
// url, then the recipe's url_template, then the recipe url with the version
// it was written for swapped out. A leading "v" is not part of the swap.
func archiveURL(p *recipe.Package, v recipe.Version) (string, error) {
	switch {
	case v.URL != "":
		return v.URL, nil
	case p.URLTemplate != "":
		return strings.ReplaceAll(p.URLTemplate, "{version}", v.ID.String()), nil
	case p.URL != "":
		id := strings.TrimPrefix(v.ID.String(), "v")
		for _, other := range p.Versions {
			o := strings.TrimPrefix(other.ID.String(), "v")
			if o != id && strings.Contains(p.URL, o) {
				return strings.ReplaceAll(p.URL, o, id), nil
			}
		}
		return p.URL, nil
	}
	return "", fmt.Errorf("%s@%s: no url to download the archive from", p.Name, v.ID)
}

// Location is a repository hosted on a known provider.
type Location struct {
	Provider string
	Owner    string
	Repo     string
}

// Canonical renders the provider shorthand pinned at ref.
func (l *Location) Canonical(ref string) string {
	return fmt.Sprintf("%s:%s/%s@%s", l.Provider, l.Owner, l.Repo, ref)
}

// CloneURL is the https clone URL of the repository.
func (l *Location) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", l.Owner, l.Repo)
}

// ParseSourceURL recognises GitHub repositories in the forms recipes use:
//
//	github:owner/repo
//	https://github.com/owner/repo(.git)
//	https://github.com/owner/repo/archive/v1.0.tar.gz
//	https://github.com/owner/repo/releases/download/...
func ParseSourceURL(sourceURL string) (*Location, error) {
	if rest, ok := strings.CutPrefix(sourceURL, "github:"); ok {
		rest, _, _ = strings.Cut(rest, "@")
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid github shorthand source '%s': expected github:owner/repo", sourceURL)
		}
		return &Location{Provider: "github", Owner: parts[0], Repo: parts[1]}, nil
	}

	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source URL '%s': %w", sourceURL, err)
	}
	if strings.ToLower(u.Hostname()) != "github.com" {
		return nil, fmt.Errorf("unsupported source URL host: %s", u.Hostname())
	}
	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(pathParts) < 2 || pathParts[0] == "" || pathParts[1] == "" {
		return nil, fmt.Errorf("invalid GitHub URL path: %s. Expected at least /<owner>/<repo>", u.Path)
	}
	return &Location{
		Provider: "github",
		Owner:    pathParts[0],
		Repo:     strings.TrimSuffix(pathParts[1], ".git"),
	}, nil
}
