// Package queue defines message payloads exchanged over the message broker,
// the publisher that emits them and the consumer that writes the booking log.
package queue

// Queue names declared by both sides.
const (
	BookingQueueName = "booking.confirmed"
	AlertQueueName   = "crowd.alert"
)

// BookingConfirmedEvent is published when a registration commits.  It
// carries enough for downstream consumers to log or notify without querying
// the primary store.
type BookingConfirmedEvent struct {
	TicketID       string `json:"ticket_id"`
	FullName       string `json:"full_name"`
	MobileNumber   string `json:"mobile_number"`
	GhatName       string `json:"ghat_name"`
	GhatShortCode  string `json:"ghat_short_code"`
	TimeSlot       string `json:"time_slot"`
	NumberOfPeople int    `json:"number_of_people"`
	VisitDate      string `json:"visit_date"`
	ConfirmedAt    string `json:"confirmed_at"`
}

// CrowdAlertEvent is published when the console broadcasts a crowd alert.
type CrowdAlertEvent struct {
	Ghat    string   `json:"ghat"`
	Zone    string   `json:"zone"`
	Message string   `json:"message"`
	Emails  []string `json:"emails,omitempty"`
	Text    string   `json:"text"`
}
