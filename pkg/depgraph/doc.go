// Package depgraph builds the deduplicated dependency graph of a source tree.
//
// # Overview
//
// A [Graph] is a directed graph over unique string identifiers. Edges point
// from the depended-upon project to the project that depends on it, so a
// top-to-bottom layout places leaf dependencies at the top and top-level
// consumers at the bottom:
//
//	core -> libfoo -> app      (app depends on libfoo, libfoo on core)
//
// Nodes with no incoming edges ([Graph.Sources]) are leaf dependencies;
// nodes with no outgoing edges ([Graph.Sinks]) are top-level consumers.
//
// Each node carries a repository label held in a side table keyed by node
// id. The label is fixed when the node is created and is used only to group
// nodes when rendering.
//
// # Building
//
// [Build] converts extracted declarations into a graph in two phases:
//
//  1. Every retained project becomes a node.
//  2. Every retained dependency becomes a node on first reference, and an
//     edge dependency -> project is added.
//
// Dependencies may be referenced before (or without) their own declaration;
// the builder never fails on such forward references. Duplicate nodes and
// edges are ignored rather than reported.
//
// # External Dependencies
//
// Names starting with [Options.ExternalPrefix] (default "therock-") denote
// projects vendored from outside the tree. Unless [Options.IncludeExternal]
// is set, such names are dropped everywhere: no node, no edge.
//
// The graph is not required to be acyclic. A project listing itself as a
// dependency produces a self-loop, which is kept.
package depgraph
