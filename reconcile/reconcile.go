package reconcile

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/store"
)

var logger zerolog.Logger = log.With().Str("component", "reconcile").Logger()

// Snapshot is the stored metadata state of one aggregation at the
// start of a reconciliation. The reconciler assumes it is the sole
// writer for the duration of the extraction; serializing concurrent
// extractions is the caller's job.
type Snapshot map[meta.Kind][]store.Element

// TakeSnapshot reads the current state of every element kind.
func TakeSnapshot(st store.Store) (Snapshot, error) {
	snap := Snapshot{}
	for _, kind := range meta.Kinds() {
		elements, err := st.ListElements(kind)
		if err != nil {
			return nil, fmt.Errorf("snapshotting %s elements: %w", kind, err)
		}
		if len(elements) > 0 {
			snap[kind] = elements
		}
	}
	return snap, nil
}

func (s Snapshot) singleton(kind meta.Kind) *store.Element {
	if list := s[kind]; len(list) > 0 {
		return &list[0]
	}
	return nil
}

// strategy plans the store operations for one element kind. New kinds
// are added by registering a strategy, not by growing a conditional
// chain.
type strategy func(p *planner, kind meta.Kind) error

var strategies = map[meta.Kind]strategy{
	meta.KindTitle:            planTitle,
	meta.KindDescription:      planIfAbsent,
	meta.KindCreator:          planCreators,
	meta.KindContributor:      planUnion("name", false),
	meta.KindSubject:          planUnion("value", true),
	meta.KindSource:           planReplaceSet,
	meta.KindRights:           planReplaceSet,
	meta.KindRelation:         planReplaceSet,
	meta.KindCoverage:         planReplaceSet,
	meta.KindOriginalCoverage: planReplaceSet,
	meta.KindCellInfo:         planReplaceSet,
	meta.KindGeometry:         planReplaceSet,
	meta.KindBand:             planReplaceSet,
	meta.KindField:            planReplaceSet,
	meta.KindVariable:         planReplaceSet,
}

// kindOrder makes plans deterministic.
var kindOrder = []meta.Kind{
	meta.KindTitle,
	meta.KindDescription,
	meta.KindCreator,
	meta.KindContributor,
	meta.KindSubject,
	meta.KindSource,
	meta.KindRights,
	meta.KindRelation,
	meta.KindCoverage,
	meta.KindOriginalCoverage,
	meta.KindCellInfo,
	meta.KindGeometry,
	meta.KindBand,
	meta.KindField,
	meta.KindVariable,
}

type planner struct {
	snap   Snapshot
	bundle *meta.ExtractedBundle
	plan   *Plan
}

// Reconcile turns a snapshot and an extracted bundle into a plan.
// Element kinds absent from the bundle are left untouched; kinds
// present follow the fixed precedence rules.
func Reconcile(snap Snapshot, bundle *meta.ExtractedBundle) (*Plan, error) {
	p := &planner{snap: snap, bundle: bundle, plan: &Plan{}}

	for _, kind := range kindOrder {
		if !bundle.Has(kind) {
			continue
		}
		handler, ok := strategies[kind]
		if !ok {
			return nil, fmt.Errorf("no reconciliation strategy for element kind %q", kind)
		}
		if err := handler(p, kind); err != nil {
			return nil, err
		}
	}

	if bundle.HeaderDump != "" {
		p.plan.Dirty = !DumpCoversSnapshot(bundle.HeaderDump, snap)
	}

	logger.Debug().
		Int("creates", len(p.plan.Creates)).
		Int("updates", len(p.plan.Updates)).
		Int("deletes", len(p.plan.Deletes)).
		Bool("dirty", p.plan.Dirty).
		Msg("reconciliation planned")
	return p.plan, nil
}

// planReplaceSet deletes every stored instance of the kind and
// recreates the full extracted set. Singleton kinds are never merged
// field by field; repeatable kinds are replaced as one ordered set.
func planReplaceSet(p *planner, kind meta.Kind) error {
	extracted := p.bundle.All(kind)

	if traits, _ := meta.TraitsOf(kind); traits.Singleton && len(extracted) > 1 {
		return &meta.ReconciliationConflict{
			Kind:    kind,
			Message: fmt.Sprintf("extraction produced %d instances of a singleton element", len(extracted)),
		}
	}

	if len(p.snap[kind]) > 0 {
		p.plan.deleteAll(kind)
	}
	for _, attrs := range extracted {
		p.plan.create(kind, attrs)
	}
	return nil
}

// planTitle only overwrites a title still carrying the default
// literal. A hand-edited title always wins over the file.
func planTitle(p *planner, kind meta.Kind) error {
	attrs := p.bundle.One(kind)
	existing := p.snap.singleton(kind)

	switch {
	case existing == nil:
		p.plan.create(kind, attrs)
	case attrString(existing.Attrs, "value") == meta.DefaultTitle:
		p.plan.update(kind, existing.ID, attrs)
	}
	return nil
}

// planIfAbsent only sets the element when none is stored.
func planIfAbsent(p *planner, kind meta.Kind) error {
	if p.snap.singleton(kind) == nil {
		p.plan.create(kind, p.bundle.One(kind))
	}
	return nil
}

// planCreators keeps the first-ordered creator untouched. A matching
// creator further down the order is deleted and recreated with its
// original order value so the fresh attributes win without reordering.
func planCreators(p *planner, kind meta.Kind) error {
	existing := p.snap[kind]
	maxOrder := 0
	for _, el := range existing {
		if order := attrInt(el.Attrs, "order"); order > maxOrder {
			maxOrder = order
		}
	}
	if maxOrder < len(existing) {
		maxOrder = len(existing)
	}

	for _, attrs := range p.bundle.All(kind) {
		name := attrString(attrs, "name")

		var match *store.Element
		for i := range existing {
			if attrString(existing[i].Attrs, "name") == name {
				match = &existing[i]
				break
			}
		}

		switch {
		case match == nil:
			maxOrder++
			created := cloneAttrs(attrs)
			created["order"] = maxOrder
			p.plan.create(kind, created)
		case attrInt(match.Attrs, "order") <= 1:
			// First-ordered creator is the resource owner; leave it.
		default:
			p.plan.deleteOne(kind, match.ID)
			created := cloneAttrs(attrs)
			created["order"] = attrInt(match.Attrs, "order")
			p.plan.create(kind, created)
		}
	}
	return nil
}

// planUnion merges append-only sets: entries already stored are kept,
// new entries are created, nothing is ever deleted.
func planUnion(key string, caseInsensitive bool) strategy {
	return func(p *planner, kind meta.Kind) error {
		canon := func(s string) string {
			if caseInsensitive {
				return strings.ToLower(strings.TrimSpace(s))
			}
			return strings.TrimSpace(s)
		}

		seen := map[string]bool{}
		for _, el := range p.snap[kind] {
			seen[canon(attrString(el.Attrs, key))] = true
		}

		for _, attrs := range p.bundle.All(kind) {
			value := canon(attrString(attrs, key))
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			p.plan.create(kind, attrs)
		}
		return nil
	}
}

// dumpAttrNames maps stored element kinds to the attribute name their
// values originate from in the file header.
var dumpAttrNames = map[meta.Kind]string{
	meta.KindTitle:       "title",
	meta.KindDescription: "summary",
	meta.KindCreator:     "creator_name",
	meta.KindContributor: "contributor_name",
	meta.KindSubject:     "keywords",
	meta.KindSource:      "source",
	meta.KindRights:      "license",
	meta.KindRelation:    "references",
}

// DumpCoversSnapshot reports whether every stored attribute-backed
// element still has its attribute line in the header dump. A stored
// element whose source attribute vanished from the file means the
// persisted description has gone stale.
func DumpCoversSnapshot(dump string, snap Snapshot) bool {
	for kind, attrName := range dumpAttrNames {
		if len(snap[kind]) == 0 {
			continue
		}
		if !strings.Contains(dump, attrName+" = ") {
			return false
		}
	}
	return true
}

func attrString(attrs meta.Attrs, key string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

func attrInt(attrs meta.Attrs, key string) int {
	switch v := attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func cloneAttrs(attrs meta.Attrs) meta.Attrs {
	out := make(meta.Attrs, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
