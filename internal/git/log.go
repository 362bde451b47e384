package git

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ariel-frischer/stepnotes/internal/notes"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrNoTag is returned by LatestTag when no tag is reachable.
var ErrNoTag = errors.New("no tag reachable from revision")

// CommitsInRange returns the commits reachable from to and not from from, newest
// first by committer time, the same set and order as `git log from..to`.
// Depth is the 1-based position in that order. An empty from walks to the root.
func (r *Repository) CommitsInRange(ctx context.Context, from, to string) ([]notes.Commit, error) {
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}
	head, err := r.repo.CommitObject(toHash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", toHash, err)
	}

	excluded := make(map[plumbing.Hash]bool)
	if from != "" {
		fromHash, err := r.resolve(from)
		if err != nil {
			return nil, err
		}
		excluded, err = r.ancestors(ctx, fromHash)
		if err != nil {
			return nil, err
		}
	}

	var commits []notes.Commit
	iter := object.NewCommitIterCTime(head, excluded, nil)
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The iterator skips parents of excluded commits but may still hand
		// out an excluded start commit.
		if excluded[c.Hash] {
			return nil
		}
		commits = append(commits, notes.Commit{Hash: c.Hash.String(), Depth: len(commits) + 1})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s..%s: %w", from, to, err)
	}

	logDebug("[git] CommitsInRange %s..%s: %d commits", from, to, len(commits))
	return commits, nil
}

// ancestors returns hash and every commit reachable from it.
func (r *Repository) ancestors(ctx context.Context, hash plumbing.Hash) (map[plumbing.Hash]bool, error) {
	start, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}

	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(start, nil, nil)
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking ancestors of %s: %w", hash, err)
	}
	return seen, nil
}

// LatestTag returns the most recent tag reachable from rev, ignoring tags that
// point at rev itself so a freshly tagged HEAD yields the previous release.
// When several tags share a commit the greatest name wins.
func (r *Repository) LatestTag(ctx context.Context, rev string) (string, error) {
	startHash, err := r.resolve(rev)
	if err != nil {
		return "", err
	}
	start, err := r.repo.CommitObject(startHash)
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", startHash, err)
	}

	tagged, err := r.tagsByCommit()
	if err != nil {
		return "", err
	}

	var found string
	iter := object.NewCommitIterCTime(start, nil, nil)
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Hash == startHash {
			return nil
		}
		if names := tagged[c.Hash]; len(names) > 0 {
			found = names[len(names)-1]
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching tags from %s: %w", rev, err)
	}
	if found == "" {
		return "", ErrNoTag
	}

	logDebug("[git] LatestTag from %s: %s", rev, found)
	return found, nil
}

// tagsByCommit maps commit hashes to the sorted names of tags pointing at them.
func (r *Repository) tagsByCommit() (map[plumbing.Hash][]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	tagged := make(map[plumbing.Hash][]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		// Annotated tags point at a tag object; peel it.
		if tagObj, err := r.repo.TagObject(target); err == nil {
			commit, err := tagObj.Commit()
			if err != nil {
				return nil
			}
			target = commit.Hash
		}
		tagged[target] = append(tagged[target], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	for _, names := range tagged {
		sort.Strings(names)
	}
	return tagged, nil
}
