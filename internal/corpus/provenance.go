// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package corpus

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// Describe captures the git state of the corpus directory: HEAD commit hash
// and whether the worktree is dirty. A directory outside any repository, or
// a repository with no commits yet, yields an empty provenance and no
// error; measurement runs do not require version control.
//
// Implements: prd008-corpus-intake R3.1-R3.3.
func Describe(dir string) (types.Provenance, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return types.Provenance{}, nil
		}
		return types.Provenance{}, fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		// Unborn HEAD: initialized but never committed.
		return types.Provenance{}, nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return types.Provenance{}, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return types.Provenance{}, fmt.Errorf("getting status: %w", err)
	}

	return types.Provenance{Commit: head.Hash().String(), Dirty: !status.IsClean()}, nil
}
