// Package triage provides the business boundary for Counsel's request
// triage system. It defines the Service (validation, lifecycle, async
// dispatch), Engine (the pure triage state machine), Store interface
// (persistence), and domain models.
package triage
