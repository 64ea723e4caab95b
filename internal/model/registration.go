package model

import "time"

// Registration is the committed booking for a party of pilgrims against one
// ghat, time slot and visit date.  Records are created once by the
// reservation transaction and never updated or deleted.
//
// Fields:
//  DocID          – auto generated document key.
//  TicketID       – human facing ticket id (KM-27-XX-XXXX).
//  FullName       – name of the pilgrim who booked.
//  MobileNumber   – contact number.
//  NumberOfPeople – party size, at least one.
//  VisitDate      – the day of the visit (UTC midnight).
//  GhatID         – reference to the ghat document.
//  GhatName       – ghat display name at booking time.
//  GhatShortCode  – ghat short code at booking time.
//  TimeSlot       – slot label at booking time.
//  CreatedAt      – server assigned creation time.
type Registration struct {
	DocID          string    `json:"docId"`          // registrations.id
	TicketID       string    `json:"id"`             // registrations.ticket_id
	FullName       string    `json:"fullName"`       // registrations.full_name
	MobileNumber   string    `json:"mobileNumber"`   // registrations.mobile_number
	NumberOfPeople int       `json:"numberOfPeople"` // registrations.number_of_people
	VisitDate      time.Time `json:"date"`           // registrations.visit_date
	GhatID         string    `json:"ghatId"`         // registrations.ghat_id
	GhatName       string    `json:"ghatName"`       // registrations.ghat_name
	GhatShortCode  string    `json:"ghat"`           // registrations.ghat_short_code
	TimeSlot       string    `json:"timeSlot"`       // registrations.time_slot
	CreatedAt      time.Time `json:"createdAt"`      // registrations.created_at
}
