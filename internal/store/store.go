// Package store provides data persistence for the shared user document.
package store

import "sahamwatch/internal/models"

// DataStore defines the persistence contract for the shared document.
//
// The document is always read and written whole; there are no partial
// updates. Every mutation must go through Update so the load-mutate-save
// sequence runs under a single process-wide exclusive lock — the only thing
// standing between the periodic scanner and the command handlers, which
// otherwise race on the same blob.
type DataStore interface {
	// Load returns the persisted document, or a fresh empty one when no
	// document exists yet or the stored form is unreadable.
	Load() *models.Document

	// Save persists the full document, replacing any prior content.
	Save(doc *models.Document) error

	// Update runs fn under the store's exclusive lock with the freshly
	// loaded document. The document is saved back only when fn reports a
	// change and no error.
	Update(fn func(doc *models.Document) (changed bool, err error)) error
}
