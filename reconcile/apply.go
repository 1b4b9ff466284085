package reconcile

import (
	"fmt"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/store"
)

// Apply executes a plan against the store: deletes, then updates,
// then creates, so singleton replacement always observes
// delete-before-create. The first store error fails the aggregation
// as a whole; rolling back already-applied writes is the store's
// transactional responsibility.
func Apply(plan *Plan, st store.Store) error {
	for _, op := range plan.Deletes {
		var match func(store.Element) bool
		if !op.All {
			id := op.ID
			match = func(el store.Element) bool { return el.ID == id }
		}
		if err := st.DeleteElements(op.Kind, match); err != nil {
			return fmt.Errorf("deleting %s elements: %w", op.Kind, err)
		}
	}

	for _, op := range plan.Updates {
		if err := st.UpdateElement(op.Kind, op.ID, op.Attrs); err != nil {
			return fmt.Errorf("updating %s element %d: %w", op.Kind, op.ID, err)
		}
	}

	created := map[meta.Kind]bool{}
	for _, op := range plan.Creates {
		// Deletes have already run, so any surviving singleton here
		// means the plan violated delete-before-create.
		if traits, _ := meta.TraitsOf(op.Kind); traits.Singleton {
			existing, err := st.GetSingleton(op.Kind)
			if err != nil {
				return err
			}
			if existing != nil || created[op.Kind] {
				return &meta.ReconciliationConflict{
					Kind:    op.Kind,
					Message: "creating a second instance without deleting the first",
				}
			}
		}
		if _, err := st.CreateElement(op.Kind, op.Attrs); err != nil {
			return fmt.Errorf("creating %s element: %w", op.Kind, err)
		}
		created[op.Kind] = true
	}
	return nil
}
