// Package runner executes external commands such as the container runtime
// CLI and returns their standard output as text.
//
// The Runner interface is the seam used by the source adapters; tests
// substitute a scripted implementation.
package runner
