// Package source adapts each external collaborator (container runtime CLI,
// alerting backend, CI provider, metrics exposition endpoint) into typed
// records with a provenance tag.
//
// Every adapter implements Adapter[T]. Fetch returns a Result carrying the
// records and whether they came from a real source or were synthesized. The
// HTTP-backed adapters (Alerts, Pipelines) never return an error: exhausted
// probes, absent credentials and malformed payloads all degrade to synthetic
// records. The runtime-backed adapters return an error wrapping
// envelope.ErrCollaboratorUnavailable and leave degradation to the caller.
//
// Checker runs the connectivity checks exposed under /api/debug and by the
// check command.
package source
