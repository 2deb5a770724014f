package models

import "time"

// PassState is the terminal state of one (user, target) pass
type PassState string

const (
	StateUnchanged PassState = "unchanged"
	StateDone      PassState = "done"
	StateFailed    PassState = "failed"
)

// Step names a stage of a pass
type Step string

const (
	StepLocate  Step = "locate"
	StepInspect Step = "inspect"
	StepCrawl   Step = "crawl"
	StepPersist Step = "persist"
	StepSearch  Step = "search"
)

// TargetResult is the structured outcome of one (user, target) pass
// swagger:model TargetResult
type TargetResult struct {
	// Target storage ID
	TargetID int64 `json:"target_id"`
	// Target URL as subscribed
	URL string `json:"url"`
	// Canonical post ID, empty if locating failed
	NoteID string `json:"note_id,omitempty"`
	// Terminal state
	State PassState `json:"state"`
	// Step that failed, set only when State is failed
	FailedStep Step `json:"failed_step,omitempty"`
	// Error kind, set only when State is failed
	ErrorKind string `json:"error_kind,omitempty"`
	// Error message, set only when State is failed
	Error string `json:"error,omitempty"`
	// Comment count recorded before the pass
	PreviousCount int `json:"previous_count"`
	// Comment count observed by inspect
	CurrentCount int `json:"current_count"`
	// Comments retrieved by the walker
	Fetched int `json:"fetched"`
	// Records written
	Inserted int `json:"inserted"`
	// Records already present
	Skipped int `json:"skipped"`
	// Sessions invalidated during this pass
	InvalidatedSessions []int64 `json:"invalidated_sessions"`
}

// PassResult is the outcome of runMonitorPass for one user
// swagger:model PassResult
type PassResult struct {
	// Unique run identifier
	RunID string `json:"run_id"`
	// Subscribing user identifier
	UserID string `json:"user_id"`
	// Keyword label
	Keyword string `json:"keyword"`
	// True when no target pass failed
	Success bool `json:"success"`
	// Human-readable summary
	Message string `json:"message"`
	// Per-target outcomes in subscription order
	Targets []TargetResult `json:"targets"`
	// All sessions invalidated during the run
	InvalidatedSessions []int64 `json:"invalidated_sessions"`
	// Completion time
	Timestamp time.Time `json:"timestamp"`
}
