package engine

// Propagation selects how a run's terminal failure is surfaced. It is
// chosen once per run, not per task.
type Propagation string

const (
	// PropagateRaise returns the terminal failure directly from Run.
	PropagateRaise Propagation = "raise"
	// PropagateCapture records the terminal failure in its task's result
	// slot; it surfaces only when that slot is read.
	PropagateCapture Propagation = "capture"
)

// Config configures one engine. The validate tags are enforced by the
// config package when the engine is configured from files/environment.
type Config struct {
	// MaxWorkers bounds the pool that blocking task bodies run on.
	// Zero means unbounded.
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers" validate:"gte=0"`
	// Propagation is the error-propagation mode for the run.
	Propagation Propagation `yaml:"propagation" mapstructure:"propagation" validate:"omitempty,oneof=raise capture"`
	// Debug logs the rendered execution plan before execution starts.
	Debug bool `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Propagation == "" {
		c.Propagation = PropagateRaise
	}
}
