// Package nodelink serializes a dependency graph as a flat node-link DOT
// document, without repository containers.
//
// # Overview
//
// This is the plain alternative to the clustered view in [cluster]. Each
// node is a rounded box whose tooltip names its owning repository, and each
// edge points from a dependency to its dependent:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//
// Set Detailed to include the repository label and degree counts in the
// node label itself.
//
// The generated DOT uses a top-to-bottom layout (rankdir=TB), the same as
// the clustered view, so both can be rendered by any [render.Renderer].
//
// [cluster]: github.com/matzehuels/rockgraph/pkg/render/cluster
// [render.Renderer]: github.com/matzehuels/rockgraph/pkg/render.Renderer
package nodelink
