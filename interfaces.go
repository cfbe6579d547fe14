package tenantflow

import "context"

// AuthBackend performs the authentication calls against the TenantFlow
// API. Implementations: rest/ (HTTP), fake/ (testing).
type AuthBackend interface {
	// Login posts credentials to the role-specific login endpoint and
	// returns the issued bearer token and the authenticated user.
	Login(ctx context.Context, creds Credentials, role Role) (token string, user *User, err error)

	// Verify validates the currently attached bearer token and returns
	// the user it belongs to.
	Verify(ctx context.Context) (*User, error)

	// RegisterOwner submits an owner sign-up with verification documents.
	// It does not authenticate the caller.
	RegisterOwner(ctx context.Context, reg OwnerRegistration) error

	// Register submits a tenant or admin sign-up.
	Register(ctx context.Context, reg Registration, role Role) error

	// Logout invalidates the current session server-side.
	Logout(ctx context.Context) error
}

// NotificationBackend performs the notification calls for the current
// user. Implementations: rest/ (HTTP), fake/ (testing).
type NotificationBackend interface {
	// List returns one page of the user's notifications, newest first.
	List(ctx context.Context, opts ListOptions) ([]Notification, error)

	// MarkRead marks a single notification as read.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead marks every notification of the current user as read.
	MarkAllRead(ctx context.Context) error

	// Send delivers a notification to one user (admin operation).
	Send(ctx context.Context, userID string, n Notification) error

	// SendBulk delivers the same notification to a set of users.
	SendBulk(ctx context.Context, b BulkNotification) error

	// Stats returns the server-side notification summary.
	Stats(ctx context.Context) (*NotificationStats, error)
}

// ProfileBackend reads and updates the role-specific profile payload.
type ProfileBackend interface {
	// Profile returns the profile payload for the given role.
	Profile(ctx context.Context, role Role) (map[string]any, error)

	// UpdateProfile applies the given fields and returns the updated user.
	UpdateProfile(ctx context.Context, role Role, fields map[string]any) (*User, error)
}

// CredentialStore persists the bearer credential across process
// restarts. Absence of a stored credential is reported as
// ErrNoCredential. Implementations: credstore/.
type CredentialStore interface {
	// Load returns the stored credential, or ErrNoCredential.
	Load() (string, error)

	// Save durably stores the credential.
	Save(token string) error

	// Clear removes the stored credential. Clearing an empty store
	// is not an error.
	Clear() error
}

// Alerter surfaces transient, user-visible messages (the toast slot of
// a UI embedding the SDK). Implementations must not block.
type Alerter interface {
	// Success announces a completed user-initiated action.
	Success(msg string)

	// Error announces a failed user-initiated action.
	Error(msg string)
}
