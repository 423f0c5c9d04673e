// Package types defines the record and response shapes shared by the opsdeck
// server packages and any Go client of its JSON API.
//
// Records (ContainerRecord, LogRecord, MetricRecord, AlertRecord,
// PipelineRecord, SystemInfoRecord) are immutable value objects built once per
// request by the source adapters. Summary holds counts derived from them and
// never the records themselves.
//
// Every response embeds Envelope, so the JSON body is flat:
//
//	{"success": true, "containers": [...], "total": 3, "timestamp": "..."}
package types
