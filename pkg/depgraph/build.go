package depgraph

import (
	"strings"

	"github.com/matzehuels/rockgraph/pkg/extract"
)

const (
	// DefaultExternalPrefix marks projects vendored from outside the tree.
	DefaultExternalPrefix = "therock-"

	// LabelExternal is the repository label of externally-marked nodes.
	LabelExternal = "external"

	// LabelUnknown is the repository label of nodes absent from the repository map.
	LabelUnknown = "unknown"
)

// Options configures [Build].
type Options struct {
	// IncludeExternal keeps externally-marked names. When false they are
	// dropped as nodes and as edge endpoints.
	IncludeExternal bool
	// ExternalPrefix is the external marker (default: DefaultExternalPrefix).
	ExternalPrefix string
	// Repos maps project names to repository labels. May be nil.
	Repos map[string]string
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.ExternalPrefix == "" {
		opts.ExternalPrefix = DefaultExternalPrefix
	}
	return opts
}

// IsExternal reports whether name carries the external marker.
func (o Options) IsExternal(name string) bool {
	return strings.HasPrefix(name, o.WithDefaults().ExternalPrefix)
}

// Label returns the repository label for name: LabelExternal for external
// names, the mapped repository if any, otherwise LabelUnknown. A mapped
// value equal to a reserved label counts as unmapped.
func (o Options) Label(name string) string {
	if o.IsExternal(name) {
		return LabelExternal
	}
	if repo := o.Repos[name]; repo != "" && !IsReservedLabel(repo) {
		return repo
	}
	return LabelUnknown
}

// IsReservedLabel reports whether label is one the builder assigns itself.
func IsReservedLabel(label string) bool {
	return label == LabelExternal || label == LabelUnknown
}

// keep reports whether name survives the filter policy.
func (o Options) keep(name string) bool {
	return name != "" && (o.IncludeExternal || !o.IsExternal(name))
}

// Build converts declarations into a dependency graph.
//
// Declarations with an empty project name are ignored. Building the same
// declarations twice yields graphs with equal node and edge sets.
func Build(decls []extract.Declaration, opts Options) *Graph {
	opts = opts.WithDefaults()
	g := New()

	for _, d := range decls {
		if opts.keep(d.Project) {
			_, _ = g.AddNode(d.Project, opts.Label(d.Project))
		}
	}

	for _, d := range decls {
		if !opts.keep(d.Project) {
			continue
		}
		for _, dep := range d.Dependencies {
			if !opts.keep(dep) {
				continue
			}
			// Both endpoints exist after this AddNode, so neither call can fail.
			_, _ = g.AddNode(dep, opts.Label(dep))
			_, _ = g.AddEdge(dep, d.Project)
		}
	}
	return g
}
