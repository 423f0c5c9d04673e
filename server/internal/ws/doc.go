// Package ws streams dashboard summaries to browsers over WebSocket.
//
// Hub builds a fresh summary on every tick of its interval and pushes it to
// all connected clients. A newly connected client receives a summary right
// away. No summary is cached between ticks, and ticks with no clients build
// nothing.
//
// Message format:
//
//	{"event": "summary", "data": { /* same schema as GET /api/summary */ }}
//
// The upgrader accepts all origins; restrict them at the reverse proxy.
package ws
