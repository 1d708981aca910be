package workers

// Worker is a background job with its own schedule.
type Worker interface {
	// Start starts the worker
	Start() error

	// Stop gracefully stops the worker
	Stop()

	// Name returns the worker name for logging
	Name() string
}
