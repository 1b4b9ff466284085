// Package store defines the element-oriented metadata store consumed
// by the reconciler. One store instance is scoped to one aggregation's
// metadata container.
package store

import "github.com/hydroshare/hsextract/meta"

// Element is one stored metadata element instance.
type Element struct {
	ID    int
	Kind  meta.Kind
	Attrs meta.Attrs
}

// Store is the narrow create/update/delete-by-kind interface. The
// pipeline never issues raw queries; everything goes through these
// element operations.
type Store interface {
	// CreateElement stores a new instance and returns its id.
	CreateElement(kind meta.Kind, attrs meta.Attrs) (int, error)

	// UpdateElement replaces the attributes of an existing instance.
	UpdateElement(kind meta.Kind, id int, attrs meta.Attrs) error

	// DeleteElements removes every instance of the kind matched by
	// the filter; a nil filter matches all.
	DeleteElements(kind meta.Kind, match func(Element) bool) error

	// GetSingleton returns the single instance of a kind, or nil when
	// none exists.
	GetSingleton(kind meta.Kind) (*Element, error)

	// ListElements returns all instances of a kind in creation order.
	ListElements(kind meta.Kind) ([]Element, error)
}
