// Package api defines the core data types and interfaces for the workflow
// engine
//
// This package contains all the shared types used across the orchestrator,
// including intents, plans, steps, execution results, events, and HTTP
// messages
package api
