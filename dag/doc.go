// Package dag validates a task registry into a dependency graph and
// computes its tiered execution plan.
//
// Validation is all-or-nothing: a registry with an unknown dependency, a
// malformed mapped signature, or a cycle produces an error and no plan, so
// no partial graph ever reaches the engine. Tiering groups tasks into
// maximal batches whose dependencies are all satisfied by strictly earlier
// tiers; tasks within one tier have no defined order.
package dag
