package meta

// Kind identifies one metadata element kind. Element kinds form a
// closed set; behaviour per kind is looked up in the registry rather
// than branched on strings at call sites.
type Kind string

const (
	KindTitle            Kind = "title"
	KindDescription      Kind = "description"
	KindCreator          Kind = "creator"
	KindContributor      Kind = "contributor"
	KindSubject          Kind = "subject"
	KindSource           Kind = "source"
	KindRights           Kind = "rights"
	KindRelation         Kind = "relation"
	KindCoverage         Kind = "coverage"
	KindOriginalCoverage Kind = "originalcoverage"
	KindCellInfo         Kind = "cellinformation"
	KindBand             Kind = "bandinformation"
	KindField            Kind = "fieldinformation"
	KindGeometry         Kind = "geometryinformation"
	KindVariable         Kind = "variable"
)

// Traits captures the lifecycle class of a kind. Singletons are always
// replaced whole; repeatable kinds are replaced as a full ordered set
// on file change; additive kinds are union-merged and never deleted by
// the pipeline.
type Traits struct {
	Singleton  bool
	Repeatable bool
	Additive   bool
}

var registry = map[Kind]Traits{
	KindTitle:            {Singleton: true},
	KindDescription:      {Singleton: true},
	KindCreator:          {Repeatable: true},
	KindContributor:      {Repeatable: true, Additive: true},
	KindSubject:          {Repeatable: true, Additive: true},
	KindSource:           {Repeatable: true},
	KindRights:           {Singleton: true},
	KindRelation:         {Repeatable: true},
	// Coverage holds one instance per type (box, period) and the set is
	// replaced whole, so it behaves as a repeatable kind.
	KindCoverage:         {Repeatable: true},
	KindOriginalCoverage: {Singleton: true},
	KindCellInfo:         {Singleton: true},
	KindGeometry:         {Singleton: true},
	KindBand:             {Repeatable: true},
	KindField:            {Repeatable: true},
	KindVariable:         {Repeatable: true},
}

// TraitsOf returns the traits of a kind and whether it is registered.
func TraitsOf(k Kind) (Traits, bool) {
	t, ok := registry[k]
	return t, ok
}

// Kinds lists all registered kinds in no particular order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}
