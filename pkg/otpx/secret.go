package otpx

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// GenerateSecret creates a fresh base32 secret (upper case, no padding) from
// the operating system CSPRNG. The issuer and account are only used to label
// the generated key and are not encoded into the secret.
func GenerateSecret(issuer, account string) (string, error) {
	return GenerateSecretFrom(rand.Reader, issuer, account)
}

// GenerateSecretFrom is GenerateSecret with an explicit entropy source. A
// failing source is reported as ErrRandomUnavailable; there is no fallback.
func GenerateSecretFrom(r io.Reader, issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      DefaultStep,
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		Rand:        r,
	})
	if err != nil {
		if errors.Is(err, otp.ErrGenerateMissingIssuer) || errors.Is(err, otp.ErrGenerateMissingAccountName) {
			return "", fmt.Errorf("otpx: generate secret: %w", err)
		}
		return "", fmt.Errorf("%w: %w", ErrRandomUnavailable, err)
	}

	return key.Secret(), nil
}
