// Package extract acquires sub-project dependency declarations from a source tree.
//
// # Overview
//
// A declaration is a project name plus the ordered list of names it depends
// on. Declarations are the only input the rest of rockgraph consumes: the graph
// builder, the renderers and the exporters all work from a []Declaration.
//
// # Sources
//
// A [Source] turns a source-tree path into declarations:
//
//   - [CMakeSource] runs the CMake evaluator against an embedded (or
//     user-supplied) project that records every therock_cmake_subproject_declare
//     call, then parses the evaluator's output file.
//   - [FileSource] reads a declarations file saved by an earlier run.
//
// Sources never panic and never return partial results. On any failure they
// return a nil slice and a coded error from [github.com/matzehuels/rockgraph/pkg/errors],
// which the pipeline reports as a diagnostic before continuing with an empty graph.
//
// # Line Format
//
// The evaluator writes one declaration per line:
//
//	amd-llvm:
//	hipify:amd-llvm
//	rocBLAS:hip-clr, rocm-cmake, therock-msgpack-cxx
//
// [Parse] skips blank lines and lines without a colon, takes the text before
// the first colon as the project name, and splits the rest on commas,
// trimming each token and discarding empty ones.
package extract
