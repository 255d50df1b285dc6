package clubio

import (
	"time"
)

// UserType discriminates the two account variants
type UserType = string

const (
	// UserTypePerson is an individual member account
	UserTypePerson UserType = "PERSON"
	// UserTypeClub is a club/organization account
	UserTypeClub UserType = "CLUB"
)

// ValidUserType checks the discriminant against the two known variants
func ValidUserType(t UserType) bool {
	switch t {
	case UserTypePerson, UserTypeClub:
		return true
	default:
		return false
	}
}

// PersonProfile is the variant payload carried by PERSON identities
type PersonProfile struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// ClubProfile is the variant payload carried by CLUB identities
type ClubProfile struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// User is the authenticated principal resolved from the backend
type User struct {
	ID       int64          `json:"id,omitempty"`
	Email    string         `json:"email,omitempty"`
	UserType UserType       `json:"user_type,omitempty"`
	Person   *PersonProfile `json:"person,omitempty"`
	Club     *ClubProfile   `json:"club,omitempty"`
}

// Validate enforces the discriminant invariant: a PERSON identity never
// carries a club profile and vice versa.
func (u *User) Validate() error {
	if !ValidUserType(u.UserType) {
		return ErrIdentityMismatch.WithMetadata(map[string]any{
			"user_type": u.UserType,
		})
	}

	if u.UserType == UserTypePerson && u.Club != nil {
		return ErrIdentityMismatch.WithMetadata(map[string]any{
			"user_type": u.UserType,
			"reason":    "club profile on person identity",
		})
	}

	if u.UserType == UserTypeClub && u.Person != nil {
		return ErrIdentityMismatch.WithMetadata(map[string]any{
			"user_type": u.UserType,
			"reason":    "person profile on club identity",
		})
	}

	return nil
}

// IsPerson reports whether the identity is an individual member
func (u *User) IsPerson() bool {
	return u != nil && u.UserType == UserTypePerson
}

// IsClub reports whether the identity is a club account
func (u *User) IsClub() bool {
	return u != nil && u.UserType == UserTypeClub
}

// DisplayName returns the human readable name for the identity
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Person != nil:
		return u.Person.FirstName + " " + u.Person.LastName
	case u.Club != nil:
		return u.Club.Name
	default:
		return u.Email
	}
}

// LoginResponse is the credential exchange payload
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Club is a club listing entry
type Club struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`
}

// Event is an event record as the backend returns it
type Event struct {
	ID          int64      `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Capacity    int        `json:"capacity,omitempty"`
	ClubID      int64      `json:"club_id,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
}

// Member is a club membership roster entry
type Member struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// ApplicationStatus is the moderation state of an event application
type ApplicationStatus = string

const (
	// ApplicationPending awaits moderation
	ApplicationPending ApplicationStatus = "PENDING"
	// ApplicationAccepted was approved by the event owner
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	// ApplicationRejected was declined by the event owner
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Application is an event application record
type Application struct {
	ID        int64             `json:"id,omitempty"`
	EventID   int64             `json:"event_id,omitempty"`
	PersonID  int64             `json:"person_id,omitempty"`
	Status    ApplicationStatus `json:"status,omitempty"`
	Message   string            `json:"message,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
}

// Image is the upload/attach response payload
type Image struct {
	ID  int64  `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
}
