// Package io reads and writes dependency graphs and output artifacts.
//
// # JSON Format
//
// [WriteJSON] and [ExportJSON] serialize a [depgraph.Graph] as two arrays.
// Nodes carry their owning repository label; edges point from a dependency
// to its dependent:
//
//	{
//	  "nodes": [
//	    {"id": "core", "repo": "OrgB/core"},
//	    {"id": "libfoo", "repo": "OrgA/repo1"}
//	  ],
//	  "edges": [
//	    {"from": "core", "to": "libfoo"}
//	  ]
//	}
//
// Nodes and edges appear in graph insertion order, so exporting the same
// graph twice produces identical bytes. [ReadJSON] and [ImportJSON] rebuild
// a graph from this format, including self-loops. A node without a repo
// field is labeled "unknown".
//
// # Atomic Writes
//
// [WriteFileAtomic] writes through a temporary file and a rename, so an
// interrupted run never leaves a truncated DOT, image, or JSON file behind.
// On Windows it falls back to a plain write.
//
// [depgraph.Graph]: github.com/matzehuels/rockgraph/pkg/depgraph.Graph
package io
