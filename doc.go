/*
Package ucdp implements a hardware module elaboration engine using Go as the
description language.

Modules are described by stateless specs with build hooks. Elaborating a spec
produces a module tree with typed ports, signals, parameters and constants,
resolved routing between hierarchy levels, a single-driver ledger over all
assignments, register banks and multiplexers. The result is a queryable
in-memory design, ready for code generation or analysis.

Types and identifiers are canonical: constructing the same type twice yields
the identical object, and flattening a composite identifier yields stable
leaf identifiers with direction-aware names.
*/
package ucdp
