package csvstage

// ProgressReporter displays activity while a file is being bulk-loaded.
type ProgressReporter interface {
	// Start begins reporting for one file. The returned handle must be
	// stopped before the next call to Start.
	Start(label string) ProgressHandle
}

// ProgressHandle controls one running progress activity.
type ProgressHandle interface {
	// Stop signals the activity to finish and waits until it has.
	// Safe to call more than once.
	Stop()
}
