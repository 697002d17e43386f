package otpx

import (
	"net/url"
	"strings"
)

// ProvisioningURI builds the otpauth URI consumed by authenticator apps:
//
//	otpauth://totp/{issuer}:{label}?secret={secret}&issuer={issuer}
//
// Issuer and label are escaped; the secret is emitted as-is since base32
// needs no escaping.
func ProvisioningURI(issuer, label, secret string) string {
	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(url.PathEscape(issuer))
	b.WriteString(":")
	b.WriteString(url.PathEscape(label))
	b.WriteString("?secret=")
	b.WriteString(secret)
	b.WriteString("&issuer=")
	b.WriteString(url.QueryEscape(issuer))
	return b.String()
}
