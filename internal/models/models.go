package models

import "time"

// User represents an account created on first identity exchange
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Package represents a tour package owned by a guide
type Package struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	TourName          string    `json:"tour_name"`
	Image             string    `json:"image"`
	Duration          string    `json:"duration"`
	DepartureLocation string    `json:"departure_location"`
	Destination       string    `json:"destination"`
	Price             float64   `json:"price"`
	DepartureDate     time.Time `json:"departure_date"`
	PackageDetails    string    `json:"package_details"`
	GuideName         string    `json:"guide_name"`
	GuidePhoto        string    `json:"guide_photo,omitempty"`
	GuideEmail        string    `json:"guide_email"`
	GuideContactNo    string    `json:"guide_contact_no,omitempty"`
	BookingCount      int       `json:"booking_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusAccepted  BookingStatus = "Accepted" // reserved, no transition into it yet
	StatusCompleted BookingStatus = "Completed"
	StatusRejected  BookingStatus = "Rejected"
)

// Booking represents a tourist's booking of a package. Package and tourist
// display fields are snapshotted at creation time.
type Booking struct {
	ID               string        `json:"id"`
	PackageID        string        `json:"package_id"`
	BookerID         string        `json:"booker_id"`
	PackageName      string        `json:"package_name"`
	PackageImage     string        `json:"package_image,omitempty"`
	Price            float64       `json:"price"`
	TouristName      string        `json:"tourist_name"`
	TouristEmail     string        `json:"tourist_email"`
	TouristImage     string        `json:"tourist_image,omitempty"`
	SelectedTourDate time.Time     `json:"selected_tour_date"`
	GuideName        string        `json:"guide_name"`
	GuideContactNo   string        `json:"guide_contact_no,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Status           BookingStatus `json:"status"`
	IdempotencyKey   *string       `json:"-"`
	CreatedAt        time.Time     `json:"created_at"`
}
