package model

import "time"

// Table represents a physical billiard table as stored in the
// `tables` table. The hourly rate is a VND amount in integer
// minor units; every charge derived from it is rounded up to a
// multiple of 1000 before being billed.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique, human readable table name (e.g. "Bàn 1").
//  HourlyRate  – price per hour of play, minor currency units.
//  Description – optional free text about the table.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Table struct {
	ID          uint64    `json:"id"`          // tables.id
	Name        string    `json:"name"`        // tables.name
	HourlyRate  int64     `json:"hourly_rate"` // tables.hourly_rate
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableWithStatus augments a Table with its availability projection:
// whether the table is free right now and, when it is not, the open
// booking occupying it (including the booking's order and its items).
// This is derived from the bookings table on every read and is never
// stored.
type TableWithStatus struct {
	Table
	IsAvailable bool     `json:"is_available"`
	OpenBooking *Booking `json:"open_booking,omitempty"`
}
