// Package probe tries an ordered list of candidate HTTP endpoints one at a
// time and reports the first that answers with a 2xx status.
//
// Exhausting the list is not an error: Probe returns a Result with Found set
// to false and the caller decides what to substitute. Attempts are strictly
// sequential so candidate order expresses preference.
package probe
