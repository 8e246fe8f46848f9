// Package models defines the core data structures for tutors, users,
// favorites and trial-lesson bookings.
package models

import "time"

// Tutor is a read-only projection of a tutor record held by the store.
// ID is the store key; it is assigned by the store and never generated by clients.
type Tutor struct {
	// ID is the store key of the tutor.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Surname is the family name.
	Surname string `json:"surname"`
	// Languages lists the spoken languages in display order.
	Languages []string `json:"languages"`
	// Levels lists the proficiency levels the tutor teaches.
	Levels []string `json:"levels"`
	// Rating is the average rating.
	Rating float64 `json:"rating"`
	// Reviews are the embedded student reviews.
	Reviews []Review `json:"reviews"`
	// PricePerHour is the hourly price in dollars.
	PricePerHour float64 `json:"price_per_hour"`
	// LessonsDone counts completed lessons.
	LessonsDone int `json:"lessons_done"`
	// AvatarURL references the avatar image.
	AvatarURL string `json:"avatar_url"`
	// LessonInfo describes the lessons.
	LessonInfo string `json:"lesson_info"`
	// Conditions lists lesson conditions.
	Conditions []string `json:"conditions"`
	// Experience describes the tutor's experience.
	Experience string `json:"experience"`
}

// FullName returns "Name Surname".
func (t Tutor) FullName() string {
	if t.Surname == "" {
		return t.Name
	}
	return t.Name + " " + t.Surname
}

// Review is a student review embedded in a Tutor.
type Review struct {
	ReviewerName   string  `json:"reviewer_name"`
	ReviewerRating float64 `json:"reviewer_rating"`
	Comment        string  `json:"comment"`
}

// PageResult is one page of tutors in store-key order.
// NextCursor is the key of the last item, or empty when the page was short
// and the store is exhausted.
type PageResult struct {
	Items      []Tutor `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Name is the display name given at registration.
	Name string
	// Email is the login of the user.
	Email string
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// Identity is the authenticated identity as seen by clients.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Session is a revocable login session backing an access token.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}

// BookingReason defines the set of valid trial-lesson reasons.
type BookingReason string

const (
	// ReasonCareer is "Career and business".
	ReasonCareer BookingReason = "career"
	// ReasonKids is "Lesson for kids".
	ReasonKids BookingReason = "kids"
	// ReasonAbroad is "Living abroad".
	ReasonAbroad BookingReason = "abroad"
	// ReasonExams is "Exams and coursework".
	ReasonExams BookingReason = "exams"
	// ReasonCulture is "Culture, travel or hobby".
	ReasonCulture BookingReason = "culture"
)

// BookingReasons lists the reasons in form order with their labels.
var BookingReasons = []struct {
	Value BookingReason
	Label string
}{
	{ReasonCareer, "Career and business"},
	{ReasonKids, "Lesson for kids"},
	{ReasonAbroad, "Living abroad"},
	{ReasonExams, "Exams and coursework"},
	{ReasonCulture, "Culture, travel or hobby"},
}

// TrialBooking is a request for a trial lesson with a tutor.
type TrialBooking struct {
	ID        string        `json:"id"`
	TutorID   string        `json:"tutor_id"`
	UserID    string        `json:"user_id,omitempty"`
	Reason    BookingReason `json:"reason" validate:"required,oneof=career kids abroad exams culture"`
	FullName  string        `json:"full_name" validate:"required,min=2"`
	Email     string        `json:"email" validate:"required,email"`
	Phone     string        `json:"phone" validate:"required,min=6"`
	CreatedAt time.Time     `json:"created_at"`
}

// FavoritesSnapshot is the full favorite key set of a user at one instant.
type FavoritesSnapshot struct {
	IDs []string `json:"ids"`
}
