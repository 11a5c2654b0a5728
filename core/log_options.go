// Package core holds the dashboard's filter operations and the option helpers shared
// by the HTTP layer.
// This file contains option functions for customizing log entries.
package core

import (
	"github.com/google/uuid"
	"github.com/tfkr-ae/launchdash/domain"
)

// LogWithContext is an option to add a context map to a log entry.
func LogWithContext(context map[string]any) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.Context = context
		return nil
	}
}

// LogWithRequestID is an option to associate a log entry with an HTTP request ID.
func LogWithRequestID(id uuid.UUID) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.RequestID = &id
		return nil
	}
}

// LogWithSelection is an option to record the widget selection that produced a log entry.
// The keys are merged into any existing context.
func LogWithSelection(selection domain.SelectionState) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		if log.Context == nil {
			log.Context = make(map[string]any)
		}
		log.Context["site"] = selection.Site
		log.Context["payload_low"] = selection.Payload.Low
		log.Context["payload_high"] = selection.Payload.High
		return nil
	}
}
