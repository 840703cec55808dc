// Package task defines the declarative surface of the scheduler: task
// definitions with explicit dependency lists and item sources, execution
// policies, the ordered registry consumed by one run, and reusable
// workflow templates built by composition.
//
// Dependencies are declared by name at registration time. There is no
// parameter-name sniffing at runtime: a definition says exactly which task
// results it consumes and, for mapped tasks, where its items come from.
package task
