package tenantflow

import "time"

// Role identifies the kind of account a user registered as.
// It is fixed at registration and never changes.
type Role string

// Account roles.
const (
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleTenant, RoleAdmin:
		return true
	}
	return false
}

// VerificationStatus is the owner-account review state. Only owners go
// through the review workflow; every other role carries the zero value
// (VerificationNotApplicable) and counts as verified.
type VerificationStatus string

// Owner verification states.
const (
	VerificationNotApplicable VerificationStatus = ""
	VerificationPending       VerificationStatus = "pending"
	VerificationApproved      VerificationStatus = "approved"
	VerificationRejected      VerificationStatus = "rejected"
)

// User represents an authenticated principal.
type User struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty"`

	// Profile is the role-specific profile payload (owner or tenant
	// details). The SDK carries it opaquely.
	Profile map[string]any `json:"profile,omitempty"`
}

// Verified reports whether the user may reach role-gated pages. Owners
// must have an approved verification; all other roles are implicitly
// verified.
func (u *User) Verified() bool {
	if u == nil {
		return false
	}
	if u.Role != RoleOwner {
		return true
	}
	return u.VerificationStatus == VerificationApproved
}

// Credentials is a login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries the sign-up fields for tenant and admin
// accounts, forwarded to the server as a JSON object.
type Registration map[string]any

// Document is a verification document attached to an owner
// registration (multipart upload).
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MaxDocumentSize is the upper bound for a single verification document.
const MaxDocumentSize = 5 << 20 // 5MB

// OwnerRegistration is the multipart sign-up payload for owner
// accounts: plain form fields plus one or more verification documents.
type OwnerRegistration struct {
	Fields    map[string]string
	Documents []Document
}

// Notification is an in-app notification owned by exactly one user.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// BulkNotification targets a set of users with the same message.
type BulkNotification struct {
	UserIDs []string `json:"userIds"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
}

// NotificationStats is the server-side notification summary.
type NotificationStats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// ListOptions holds pagination parameters.
type ListOptions struct {
	Page  int
	Limit int
}
