package domain

import "time"

// Device is a client installation a user signed in from. (UserID, Code) is
// unique. The row lives as long as its refresh token.
type Device struct {
	ID         string
	UserID     string
	Code       string
	Type       string
	Name       string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Seen is the last sign-in from the device, falling back to CreatedAt for
// a device that has not been stamped yet.
func (d Device) Seen() time.Time {
	if d.LastSeenAt.IsZero() {
		return d.CreatedAt
	}
	return d.LastSeenAt
}

// DeviceInfo is what a client reports about itself at login.
type DeviceInfo struct {
	Code string
	Type string
	Name string
}
