// Package aggregate combines the source adapters into dashboard payloads.
//
// BuildSummary fans out to the containers, alerts and system adapters
// concurrently. Each task owns its result slot, its timeout and its panic
// recovery; a failed task is logged and replaced with an empty result, so
// the summary always succeeds unless composing it faults. The summary holds
// counts only, which makes two builds over identical upstream state equal
// apart from timestamps.
//
// The remaining methods wrap a single adapter each and shape the response
// for one endpoint.
package aggregate
