// Package envelope builds the uniform response wrapper (types.Envelope) and
// defines the error taxonomy shared by the adapters and the aggregator.
//
// Timestamps are the time the envelope was produced, in UTC with millisecond
// precision (TimeFormat). Now is a package variable so tests can pin the clock.
//
// Error classes, matched with errors.Is:
//   - ErrCollaboratorUnavailable: the runtime or HTTP backend could not be reached
//   - ErrMalformedPayload: data did not match the expected shape
//   - ErrConfigurationAbsent: credentials or URLs are not configured (expected mode)
//   - ErrUnexpectedFault: a defect in the aggregation logic itself
package envelope
