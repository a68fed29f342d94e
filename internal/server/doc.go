// Package server exposes the planning and execution engine over HTTP and
// streams run events over WebSocket
package server
