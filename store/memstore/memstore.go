// Package memstore is the map-backed metadata store used by tests and
// the CLI dry-run mode.
package memstore

import (
	"fmt"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/store"
)

type MemStore struct {
	nextID   int
	elements map[meta.Kind][]store.Element
}

func New() *MemStore {
	return &MemStore{nextID: 1, elements: map[meta.Kind][]store.Element{}}
}

func (m *MemStore) CreateElement(kind meta.Kind, attrs meta.Attrs) (int, error) {
	if _, ok := meta.TraitsOf(kind); !ok {
		return 0, fmt.Errorf("unknown element kind %q", kind)
	}
	id := m.nextID
	m.nextID++
	m.elements[kind] = append(m.elements[kind], store.Element{ID: id, Kind: kind, Attrs: attrs})
	return id, nil
}

func (m *MemStore) UpdateElement(kind meta.Kind, id int, attrs meta.Attrs) error {
	for i, el := range m.elements[kind] {
		if el.ID == id {
			m.elements[kind][i].Attrs = attrs
			return nil
		}
	}
	return fmt.Errorf("no %s element with id %d", kind, id)
}

func (m *MemStore) DeleteElements(kind meta.Kind, match func(store.Element) bool) error {
	var kept []store.Element
	for _, el := range m.elements[kind] {
		if match != nil && !match(el) {
			kept = append(kept, el)
		}
	}
	m.elements[kind] = kept
	return nil
}

func (m *MemStore) GetSingleton(kind meta.Kind) (*store.Element, error) {
	list := m.elements[kind]
	if len(list) == 0 {
		return nil, nil
	}
	el := list[0]
	return &el, nil
}

func (m *MemStore) ListElements(kind meta.Kind) ([]store.Element, error) {
	out := make([]store.Element, len(m.elements[kind]))
	copy(out, m.elements[kind])
	return out, nil
}
