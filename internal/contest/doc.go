// Package contest defines the normalized contest record shared by every
// source adapter, along with status derivation and the canonical feed
// ordering.
//
// A Contest's status is never stored as ground truth: it is a pure
// function of the contest's start time, its duration, and the instant it
// is evaluated at. Adapters and caches carry whatever status they were
// built with, but consumers must recompute before presenting.
package contest
