// Package flock provides cross-platform file locking utilities.
//
// The pipeline run store updates its run.json record once per stage
// transition; an exclusive, non-blocking lock around those writes keeps
// concurrent cicd invocations from interleaving updates. Locks work on both
// Unix and Windows systems.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
