package model

import "time"

// Subject categories accepted by the contact form.
const (
	SubjectChessCoaching = "chess-coaching"
	SubjectAMC8Prep      = "amc8-prep"
	SubjectGeneral       = "general"
)

// SubjectLabel returns the human readable label for a subject category.
func SubjectLabel(subject string) string {
	switch subject {
	case SubjectChessCoaching:
		return "Chess Coaching"
	case SubjectAMC8Prep:
		return "AMC 8 Preparation"
	case SubjectGeneral:
		return "General Inquiry"
	default:
		return subject
	}
}

// ContactMessage represents a message submitted via the contact form.
// It stays pending until the sender opens the verification link.
type ContactMessage struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Subject           string     `json:"subject"`
	Message           string     `json:"message"`
	VerificationToken string     `json:"verificationToken"`
	IsVerified        bool       `json:"isVerified,string"`
	CreatedAt         time.Time  `json:"createdAt"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
}

// FullName joins first and last name.
func (m *ContactMessage) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// ContactSubmission is the raw form payload for POST /api/contact.
// ConfirmEmail is compared against Email and then discarded.
type ContactSubmission struct {
	FirstName    string `json:"firstName" validate:"required,notblank"`
	LastName     string `json:"lastName" validate:"required,notblank"`
	Email        string `json:"email" validate:"required,email"`
	ConfirmEmail string `json:"confirmEmail" validate:"required,email"`
	Subject      string `json:"subject" validate:"required,oneof=chess-coaching amc8-prep general"`
	Message      string `json:"message" validate:"required,min=20,max=2000"`
}
