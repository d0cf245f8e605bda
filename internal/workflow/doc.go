// Package workflow drives the pipeline. A manager owns the registered stages
// and runs them as repeating batch passes: each tick executes every stage once
// in pipeline order, letting the shared store carry state between stages.
package workflow
