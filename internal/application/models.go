package application

import (
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// ClassInput captures the caller provided configuration of a new class.
// Dates are YYYY-MM-DD, times are HH:MM in Timezone.
type ClassInput struct {
	Name               string   `json:"name" validate:"required,max=200"`
	Acronym            string   `json:"acronym" validate:"required,alphanum,max=32"`
	InstructorID       string   `json:"instructor_id" validate:"required"`
	HelpMessage        string   `json:"help_message" validate:"max=500"`
	StartDate          string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	Weekdays           []string `json:"weekdays" validate:"required,min=1,max=7,dive,required"`
	StartTime          string   `json:"start_time" validate:"required,datetime=15:04"`
	Timezone           string   `json:"timezone" validate:"required,timezone"`
	SessionCount       int      `json:"session_count" validate:"min=0,max=520"`
	DurationMinutes    int      `json:"duration_minutes" validate:"min=1,max=720"`
	LobbyBufferMinutes int      `json:"lobby_buffer_minutes" validate:"min=0,max=240"`
	Participants       []string `json:"participants" validate:"dive,required"`

	// StartAt, when set, supplies StartDate, Weekdays and StartTime: the
	// class meets weekly on the weekday and at the time StartAt falls on in
	// Timezone, starting that day.
	StartAt *time.Time `json:"start_at,omitempty"`
}

// RescheduleInput lists the session fields to change. Nil fields are left
// untouched. StartTime is HH:MM in the session's timezone, or in Timezone
// when that is also given.
type RescheduleInput struct {
	SessionAcronym string  `json:"session_acronym" validate:"required"`
	Date           *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime      *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	Timezone       *string `json:"timezone" validate:"omitempty,timezone"`
	HelpMessage    *string `json:"help_message" validate:"omitempty,max=500"`
	InstructorID   *string `json:"instructor_id" validate:"omitempty,min=1"`
	DisableEmails  *bool   `json:"disable_emails"`
}

// AdHocInput captures a one-off session request.
type AdHocInput struct {
	Name            string    `json:"name" validate:"required,max=200"`
	Type            string    `json:"type" validate:"required"`
	Start           time.Time `json:"start" validate:"required"`
	Timezone        string    `json:"timezone" validate:"required,timezone"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0,max=720"`
	InstructorID    string    `json:"instructor_id" validate:"required"`
	Participants    []string  `json:"participants" validate:"required,min=1,dive,required"`
	Notes           string    `json:"notes" validate:"max=2000"`
}

// SessionView is a session prepared for display. Instructor fields come
// from the directory and are empty when the instructor is unknown.
type SessionView struct {
	Acronym         string    `json:"acronym"`
	Sequence        int       `json:"sequence,omitempty"`
	Name            string    `json:"name"`
	LocalDate       string    `json:"local_date"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	ScheduledEnd    time.Time `json:"scheduled_end"`
	LobbyOpen       time.Time `json:"lobby_open"`
	LobbyClose      time.Time `json:"lobby_close"`
	Timezone        string    `json:"timezone"`
	InstructorID    string    `json:"instructor_id"`
	InstructorName  string    `json:"instructor_name,omitempty"`
	InstructorEmail string    `json:"instructor_email,omitempty"`
	HelpMessage     string    `json:"help_message,omitempty"`
	DisableEmails   bool      `json:"disable_emails,omitempty"`
	State           string    `json:"state"`
}

// ClassDetails is a stored class as returned by the service.
type ClassDetails struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Acronym            string               `json:"acronym"`
	InstructorID       string               `json:"instructor_id"`
	HelpMessage        string               `json:"help_message,omitempty"`
	StartDate          string               `json:"start_date"`
	Weekdays           []string             `json:"weekdays"`
	StartTime          string               `json:"start_time"`
	Timezone           string               `json:"timezone"`
	SessionCount       int                  `json:"session_count"`
	DurationMinutes    int                  `json:"duration_minutes"`
	LobbyBufferMinutes int                  `json:"lobby_buffer_minutes"`
	Participants       []string             `json:"participants"`
	State              scheduler.ClassState `json:"state"`
	Version            int                  `json:"version"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Sessions           []SessionView        `json:"sessions"`
	Class              scheduler.Class      `json:"-"`
}

// RescheduleResult is the outcome of RescheduleSession. DateChanged tells
// callers whether participants need to hear about the move.
type RescheduleResult struct {
	Class       ClassDetails `json:"class"`
	Session     SessionView  `json:"session"`
	DateChanged bool         `json:"date_changed"`
}

// AdHocDetails is a stored one-off session.
type AdHocDetails struct {
	SessionView
	Type         scheduler.AdHocType `json:"type"`
	Description  string              `json:"description"`
	Capacity     int                 `json:"capacity"`
	Participants []string            `json:"participants"`
	Notes        string              `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
