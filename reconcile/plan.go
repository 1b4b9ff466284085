// Package reconcile decides how freshly extracted metadata is merged
// into an aggregation's stored metadata: what to create, what to
// update in place and what to delete and recreate.
package reconcile

import (
	"encoding/json"

	"github.com/hydroshare/hsextract/meta"
)

// SyncState is the metadata-sync status of an aggregation.
type SyncState int

const (
	// StateClean means the persisted description matches the live
	// metadata model.
	StateClean SyncState = iota
	// StateDirty means the persisted description is stale and needs
	// regeneration before it can be trusted again.
	StateDirty
)

func (s SyncState) String() string {
	if s == StateDirty {
		return "DIRTY"
	}
	return "CLEAN"
}

func (s SyncState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Op is one planned store operation.
type Op struct {
	Kind  meta.Kind
	ID    int        // set for updates and targeted deletes
	Attrs meta.Attrs // set for creates and updates
	All   bool       // delete every instance of Kind
}

// Plan is the ordered outcome of one reconciliation. Deletes are
// applied before creates so singleton elements are replaced whole,
// never patched.
type Plan struct {
	Deletes []Op
	Updates []Op
	Creates []Op

	// Dirty reports whether this reconciliation leaves the persisted
	// description stale relative to the live metadata.
	Dirty bool
}

func (p *Plan) deleteAll(kind meta.Kind) {
	p.Deletes = append(p.Deletes, Op{Kind: kind, All: true})
}

func (p *Plan) deleteOne(kind meta.Kind, id int) {
	p.Deletes = append(p.Deletes, Op{Kind: kind, ID: id})
}

func (p *Plan) create(kind meta.Kind, attrs meta.Attrs) {
	p.Creates = append(p.Creates, Op{Kind: kind, Attrs: attrs})
}

func (p *Plan) update(kind meta.Kind, id int, attrs meta.Attrs) {
	p.Updates = append(p.Updates, Op{Kind: kind, ID: id, Attrs: attrs})
}

// Empty reports whether the plan changes nothing.
func (p *Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Updates) == 0 && len(p.Creates) == 0
}

// State is the sync state the aggregation ends up in once the plan is
// applied.
func (p *Plan) State() SyncState {
	if p.Dirty {
		return StateDirty
	}
	return StateClean
}
