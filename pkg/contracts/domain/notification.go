package domain

// Notification is a message announcing a finished report run
type Notification struct {
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}
