package stage

import "context"

// Handler describes the contract the workflow manager needs from each stage.
// A pass drains whatever work is currently eligible and returns; the manager
// decides when to run the next pass.
type Handler interface {
	Name() string
	RunPass(context.Context) error
	HealthCheck(context.Context) Health
}
