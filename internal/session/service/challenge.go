package service

import (
	"strconv"
	"strings"
	"time"

	"lockpass/internal/session/models"
)

// The challenge text is re-derived server-side during verification and is
// never stored, so field order and literal text must stay bit-for-bit
// stable. Changing any line breaks every in-flight session.
const (
	challengeBanner = "Lockpass Wallet Verification"
	challengeAction = "Action: verify-locked-balance"
)

// buildChallengeMessage renders the deterministic plaintext the customer
// personal-signs.
func buildChallengeMessage(sess *models.Session, chainID uint64) string {
	lines := []string{
		challengeBanner,
		"Business: " + sess.BusinessID.String(),
		"Session: " + sess.ID.String(),
		"Nonce: " + sess.Nonce,
		"Expires: " + sess.ExpiresAt.UTC().Format(time.RFC3339),
		"Chain ID: " + strconv.FormatUint(chainID, 10),
		challengeAction,
	}
	return strings.Join(lines, "\n")
}
