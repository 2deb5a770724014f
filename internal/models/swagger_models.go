package models

// HTTPError represents an HTTP error response
// swagger:model HTTPError
type HTTPError struct {
	// HTTP status code
	Code int `json:"code"`
	// Error message
	Message string `json:"message"`
}

// MonitorRequest is the body of POST /api/monitor
// swagger:model MonitorRequest
type MonitorRequest struct {
	// Subscribing user identifier
	Email string `json:"email" validate:"required,email"`
	// Keyword label stored with every collected comment
	Keyword string `json:"keyword" validate:"required"`
}

// SessionRequest is the body of POST /api/sessions
// swagger:model SessionRequest
type SessionRequest struct {
	// Raw cookie string
	Value string `json:"value" validate:"required"`
	// Whether the session starts live, defaults to true
	Alive *bool `json:"alive,omitempty"`
}

// SessionResponse reports a provisioned session
// swagger:model SessionResponse
type SessionResponse struct {
	// Storage ID of the new session
	ID int64 `json:"id"`
	// Number of live sessions after provisioning
	LiveSessions int `json:"live_sessions"`
}

// TargetRequest is the body of POST /api/targets
// swagger:model TargetRequest
type TargetRequest struct {
	// Subscribing user identifier
	Email string `json:"email" validate:"required,email"`
	// Post URL in discovery or explore shape
	URL string `json:"url" validate:"required,url"`
}

// SearchRequest is the body of POST /api/search
// swagger:model SearchRequest
type SearchRequest struct {
	// Search keyword
	Keyword string `json:"keyword" validate:"required"`
	// Maximum number of posts to return, defaults to 10
	Limit int `json:"limit" validate:"omitempty,min=1,max=200"`
}

// SearchResponse lists the posts a keyword search found
// swagger:model SearchResponse
type SearchResponse struct {
	Keyword string      `json:"keyword"`
	Count   int         `json:"count"`
	Notes   []SearchHit `json:"notes"`
}

// NoteRequest is the body of POST /api/notes/info and POST /api/notes/comments
// swagger:model NoteRequest
type NoteRequest struct {
	// Post URL in discovery or explore shape
	URL string `json:"url" validate:"required,url"`
}

// NoteCommentsResponse is a post's full comment tree, flattened
// swagger:model NoteCommentsResponse
type NoteCommentsResponse struct {
	NoteID   string          `json:"note_id"`
	Count    int             `json:"count"`
	Comments []CommentRecord `json:"comments"`
}

// HealthResponse is returned by GET /api/health
// swagger:model HealthResponse
type HealthResponse struct {
	// healthy or unhealthy
	Status string `json:"status"`
	// Store backend name
	Database string `json:"database"`
	// Live session count
	LiveSessions int `json:"live_sessions"`
	// Failure reason when unhealthy
	Message string `json:"message,omitempty"`
}
