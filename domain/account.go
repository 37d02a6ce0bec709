package domain

import (
	"strings"

	apperrors "github.com/louisbranch/waymark/errors"
)

// AccountIDLength is the length of a canonical account identity.
const AccountIDLength = 26

// AccountID identifies one ledger participant in the host's canonical form:
// 26 lowercase base32 characters, no padding.
type AccountID string

// Balance is a ledger-native magnitude for reserved amounts.
type Balance uint64

// ParseAccountID validates raw as a canonical account identity.
func ParseAccountID(raw string) (AccountID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", apperrors.New(apperrors.CodeAccountIDInvalid, "account id is required")
	}
	if len(value) != AccountIDLength {
		return "", apperrors.WithMetadata(
			apperrors.CodeAccountIDInvalid,
			"account id length is invalid",
			map[string]string{"Field": "account_id"},
		)
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			return "", apperrors.WithMetadata(
				apperrors.CodeAccountIDInvalid,
				"account id contains non-canonical characters",
				map[string]string{"Field": "account_id"},
			)
		}
	}
	return AccountID(value), nil
}

// String returns the canonical textual form.
func (a AccountID) String() string {
	return string(a)
}
