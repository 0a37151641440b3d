// Package domain holds the entities shared by the booking engine packages
// and the error taxonomy their operations report.
package domain

import "time"

// Role values carried by users and actors.
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Booking status values. A booking never leaves StatusCancelled.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// DateLayout is the calendar-date format used for slot dates. Times within a
// day are plain "HH:MM" strings, no time zone.
const DateLayout = "2006-01-02"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Gender       string    `json:"gender"`
	Role         string    `json:"role"`
	IsBlocked    bool      `json:"isBlocked"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Court struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OpenTime    string `json:"openTime"`
	CloseTime   string `json:"closeTime"`
	// HourlyRateCents is the fallback rate when no pricing rule matches.
	HourlyRateCents int64 `json:"hourlyRateCents"`
	IsActive        bool  `json:"isActive"`
}

type PricingRule struct {
	ID      int64 `json:"id"`
	CourtID int64 `json:"courtId"`
	// DayOfWeek is 0-6, Sunday through Saturday.
	DayOfWeek int `json:"dayOfWeek"`
	// TimeWindow is a "HH:MM-HH:MM" range the rule applies to.
	TimeWindow string `json:"timeWindow"`
	PriceCents int64  `json:"priceCents"`
	IsActive   bool   `json:"isActive"`
}

type TimeSlot struct {
	ID          int64  `json:"id"`
	CourtID     int64  `json:"courtId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	PriceCents  int64  `json:"priceCents"`
	IsAvailable bool   `json:"isAvailable"`
}

type Booking struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	TimeSlotID int64     `json:"timeSlotId"`
	Status     string    `json:"status"`
	// TotalPriceCents is captured from the slot at creation and never changes.
	TotalPriceCents int64     `json:"totalPriceCents"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TimeSlotWithCourt is a slot materialized together with its court.
type TimeSlotWithCourt struct {
	TimeSlot
	Court Court `json:"court"`
}

// BookingDetail is a booking materialized with its user and slot+court.
type BookingDetail struct {
	Booking
	User User              `json:"user"`
	Slot TimeSlotWithCourt `json:"timeSlot"`
}

// CalendarSlot is a slot with its court and, when one exists, the current
// non-cancelled booking and that booking's user.
type CalendarSlot struct {
	TimeSlot
	Court   Court          `json:"court"`
	Booking *CalendarEntry `json:"booking,omitempty"`
}

// CalendarEntry is the booking half of a CalendarSlot.
type CalendarEntry struct {
	Booking
	User User `json:"user"`
}

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// ValidStatus reports whether status is a known booking status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}
