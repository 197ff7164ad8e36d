package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated         EventType = "user_created"
	EventResultSubmitted     EventType = "result_submitted"
	EventResultReviewed      EventType = "result_reviewed"
	EventAssignmentCreated   EventType = "assignment_created"
	EventAssignmentCompleted EventType = "assignment_completed"
	EventAssignmentReviewed  EventType = "assignment_reviewed"
)

// Event represents a domain event emitted by services. Actor is the
// email of the user whose action produced the event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Email    string `json:"email"`
	Position string `json:"position"`
	IsAdmin  bool   `json:"is_admin"`
}

// ResultSubmittedPayload payload.
type ResultSubmittedPayload struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	Difficulty  string `json:"difficulty"`
	ResultIndex int    `json:"result_index"`
}

// ResultReviewedPayload payload.
type ResultReviewedPayload struct {
	Email       string `json:"email"`
	ReviewedBy  string `json:"reviewed_by"`
	ResultIndex int    `json:"result_index"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssignmentID string `json:"assignment_id"`
	StaffEmail   string `json:"staff_email"`
	Topic        string `json:"topic"`
	AssignedRole string `json:"assigned_role"`
}

// AssignmentCompletedPayload payload.
type AssignmentCompletedPayload struct {
	AssignmentID string `json:"assignment_id"`
	StaffEmail   string `json:"staff_email"`
	OverallScore string `json:"overall_score"`
}

// AssignmentReviewedPayload payload.
type AssignmentReviewedPayload struct {
	AssignmentID string `json:"assignment_id"`
	StaffEmail   string `json:"staff_email"`
	ReviewedBy   string `json:"reviewed_by"`
}
