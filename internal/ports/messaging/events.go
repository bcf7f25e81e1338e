package messaging

import "time"

// CalendarSyncEvent asks the sync worker to re-push all approved entries
// of one user and year to the CalDAV server.
type CalendarSyncEvent struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Year        int    `json:"year"`
}

// Mail actions for ApprovalMailEvent.
const (
	MailActionRequested = "requested"
	MailActionApproved  = "approved"
	MailActionRejected  = "rejected"
)

// ApprovalMailEvent is the JSON payload sent via SQS for the mail queue.
// It notifies the approver about new requests and the owner about decisions.
type ApprovalMailEvent struct {
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Action      string    `json:"action"`
	Dates       []string  `json:"dates"`
	OccurredAt  time.Time `json:"occurredAt"`
}
