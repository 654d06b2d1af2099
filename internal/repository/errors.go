package repository

import "errors"

// This file defines custom errors specific to the repository layer.
// This allows the repository to communicate outcomes in a storage-agnostic way.

// ErrSave is wrapped around any serialization or storage failure reported by
// Save. The store layer checks for it only to decide log wording; persistence
// failures never propagate to user-facing actions.
var ErrSave = errors.New("repository: save failed")
