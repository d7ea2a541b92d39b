package staff

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	tokenSalt = []byte("ratiba.core.staff.token")
	b32       = base32.StdEncoding.WithPadding(base32.NoPadding)

	// errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes the member's ID for use in password reset links.
func EncodeUID(m Member) string {
	return base64.RawURLEncoding.EncodeToString([]byte(m.ID))
}

func DecodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// MakeResetToken generates a password reset token for m.
// The token stops being valid once the password changes, m logs in, or conf.PasswordResetTimeoutDelta elapses.
func MakeResetToken(conf *core.Config, m Member) (string, error) {
	return makeTokenWithTimestamp(conf, m, numDaysSince2001(NowFunc()))
}

// VerifyResetToken checks that token was made for m and has not expired.
func VerifyResetToken(conf *core.Config, m Member, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidToken
	}

	data, err := b32.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidToken
	}

	// check that token has not been tampered with
	want, err := makeTokenWithTimestamp(conf, m, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 0 {
		return ErrInvalidToken
	}

	if (numDaysSince2001(NowFunc()) - ts) > int(conf.PasswordResetTimeoutDelta/(24*time.Hour)) {
		return ErrTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(conf *core.Config, m Member, ts int) (string, error) {
	sig, err := sign(conf.SecretKey, hashValue(m, ts))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", b32.EncodeToString([]byte(strconv.Itoa(ts))), sig), nil
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func sign(secretKey string, val []byte) (string, error) {
	key := sha256.Sum256(append(tokenSalt, secretKey...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(val); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

func hashValue(m Member, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(m.ID)
	val.Write(m.PasswordHash)
	if !m.LastLogin.IsZero() {
		val.WriteString(m.LastLogin.UTC().Format(time.RFC3339Nano))
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
