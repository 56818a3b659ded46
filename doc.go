// Package mads implements the core numeric vocabulary shared by every
// other package in this module: extended-real values, points, and the
// small set of array helpers the mesh, barrier, poll, and search
// packages build on.
//
// It plays the role the root optim package plays in the pattern-search
// lineage this module descends from: a dependency-free base that every
// higher package imports, never the other way around.
package mads
