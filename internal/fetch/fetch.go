// Package fetch materializes remote repositories into local directories so
// they can be packed like any other root. Only git transports are supported;
// GitHub web URLs with /tree/<ref>/<subdir> segments are understood.
package fetch

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/corpuskit/corpus/internal/errors"
)

// DefaultTimeout bounds a clone when the caller does not set one.
const DefaultTimeout = 5 * time.Minute

// Repo describes a remote repository to fetch.
type Repo struct {
	// URL is the clone URL.
	URL string
	// Ref is a branch or tag name; empty means the remote default.
	Ref string
	// Subdir restricts the pack root to a subdirectory of the checkout.
	Subdir string
}

// IsRemote reports whether a source string names a remote repository rather
// than a local path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "git@")
}

// Parse interprets a remote source string. GitHub tree URLs of the form
// https://github.com/<owner>/<repo>/tree/<ref>/<subdir> carry the ref and
// subdir; anything else is used as a clone URL verbatim.
func Parse(raw string) (*Repo, error) {
	if strings.HasPrefix(raw, "git@") {
		return &Repo{URL: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.Validation("invalid repository URL: "+raw, err).
			WithDetail("url", raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, errors.Validation("repository URL must include owner and name: "+raw, nil).
			WithDetail("url", raw)
	}

	repo := &Repo{
		URL: u.Scheme + "://" + u.Host + "/" + segments[0] + "/" + strings.TrimSuffix(segments[1], ".git"),
	}
	if len(segments) >= 4 && segments[2] == "tree" {
		repo.Ref = segments[3]
		if len(segments) > 4 {
			repo.Subdir = strings.Join(segments[4:], "/")
		}
	}
	return repo, nil
}

// Clone performs a shallow clone into dest and returns the effective pack
// root (dest joined with the repo's subdir, when set).
func (r *Repo) Clone(ctx context.Context, dest string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := &git.CloneOptions{
		URL:   r.URL,
		Depth: 1,
	}
	if r.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(r.Ref)
		opts.SingleBranch = true
	}

	_, err := git.PlainCloneContext(ctx, dest, false, opts)
	if err != nil && r.Ref != "" {
		// The ref may be a tag rather than a branch.
		opts.ReferenceName = plumbing.NewTagReferenceName(r.Ref)
		_, err = git.PlainCloneContext(ctx, dest, false, opts)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Timeout("repository fetch timed out: "+r.URL, err).
				WithDetail("url", r.URL)
		}
		return "", errors.New(errors.ErrCodeFetchFailed, "failed to clone repository: "+r.URL, err).
			WithDetail("url", r.URL).
			WithSuggestion("check the URL, ref, and network access")
	}

	root := dest
	if r.Subdir != "" {
		root = filepath.Join(dest, filepath.FromSlash(r.Subdir))
	}
	return root, nil
}

// Describe returns the manifest source string for the repo.
func (r *Repo) Describe() string {
	s := r.URL
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	if r.Subdir != "" {
		s += "#" + r.Subdir
	}
	return s
}
