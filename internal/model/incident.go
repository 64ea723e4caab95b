package model

import "time"

// Missing person report statuses.
const (
	MissingPending       = "Pending"
	MissingInvestigating = "Under Investigation"
	MissingFound         = "Found"
)

// Health emergency statuses.
const (
	EmergencyPending   = "Pending"
	EmergencyOnSite    = "On-site"
	EmergencyResponded = "Responded"
)

// MissingPersonReport is filed by a pilgrim and worked by police and
// volunteers from the console.
type MissingPersonReport struct {
	ID                  string    `json:"id"`                            // missing_persons.id
	CaseID              string    `json:"caseId"`                        // missing_persons.case_id
	MissingPersonName   string    `json:"missingPersonName"`             // missing_persons.missing_person_name
	MissingPersonMobile string    `json:"missingPersonMobile,omitempty"` // missing_persons.missing_person_mobile
	ReporterContact     string    `json:"reporterContact"`               // missing_persons.reporter_contact
	LastSeenGhat        string    `json:"lastSeenGhat"`                  // missing_persons.last_seen_ghat
	DetailedLocation    string    `json:"detailedLocation"`              // missing_persons.detailed_location
	Description         string    `json:"description"`                   // missing_persons.description
	PhotoURL            string    `json:"photoUrl,omitempty"`            // missing_persons.photo_url
	Status              string    `json:"status"`                        // missing_persons.status
	CreatedAt           time.Time `json:"createdAt"`                     // missing_persons.created_at
}

// HealthEmergency is a medical alert raised from the emergency button.
type HealthEmergency struct {
	ID        string    `json:"id"`                // emergency_alerts.id
	IssueType string    `json:"issueType"`         // emergency_alerts.issue_type
	Location  string    `json:"location"`          // emergency_alerts.location
	Details   string    `json:"details,omitempty"` // emergency_alerts.details
	Status    string    `json:"status"`            // emergency_alerts.status
	CreatedAt time.Time `json:"createdAt"`         // emergency_alerts.created_at
}
