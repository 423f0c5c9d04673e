// Package parse turns raw collaborator output into typed records.
//
// Text parsers (Container, Stats, SystemInfo, Version) consume one line of a
// delimited record produced by a runtime --format template and map fields by
// position. They are total: a short line yields default values for the
// missing trailing fields instead of an error, since the runtime's output
// varies by version.
//
// JSON parsers (Alerts, Pipelines) decode HTTP response bodies from the
// alerting backend and the CI provider, applying field-name fallbacks.
// They return an error only when the body is not JSON at all.
package parse
