package domain

import "time"

// DeviceState is the lifecycle state of an enrolled authenticator.
type DeviceState string

const (
	DeviceUnconfirmed DeviceState = "unconfirmed"
	DeviceConfirmed   DeviceState = "confirmed"
)

// Device is an enrolled TOTP authenticator. A user holds at most one
// confirmed device; a new enrollment replaces any pending one.
type Device struct {
	ID          string
	UserID      string
	Label       string
	Secret      string // base32, no padding
	CreatedAt   time.Time
	ConfirmedAt *time.Time // nil while unconfirmed
	LastUsedAt  *time.Time
}

func (d Device) State() DeviceState {
	if d.ConfirmedAt != nil {
		return DeviceConfirmed
	}
	return DeviceUnconfirmed
}

func (d Device) Confirmed() bool { return d.ConfirmedAt != nil }

// Enrollment is handed back to the user once when a device is created so it
// can be added to an authenticator app.
type Enrollment struct {
	Device          Device
	Secret          string
	ProvisioningURI string
	QRCode          string // data:image/png;base64 URI of ProvisioningURI
}
