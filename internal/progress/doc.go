// Package progress renders the activity indicator shown while a file is
// being bulk-loaded.
//
// Indicator runs one goroutine per Start call that cycles the frames
// "Inserting.", "Inserting..", "Inserting...", "Inserting   " until the
// returned handle is stopped. Stop cancels the goroutine and waits for it to
// exit, so no indicator output can interleave with later log lines.
//
// Plain is the non-interactive variant used for CI and piped output: one
// line per file and no goroutine.
//
// Neither reporter touches the database.
package progress
