package service

import (
	"crypto/rand"
	"fmt"
	"time"

	id "intake/pkg/domain"
)

// referenceAlphabet intentionally covers the full uppercase alphanumeric
// range; references are quoted over the phone, so no ambiguity trimming.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const referenceSuffixLen = 6

// maxReferenceAttempts bounds the regenerate loop. The storage-level unique
// constraint remains the backstop; exhaustion is a ReferenceAllocationError.
const maxReferenceAttempts = 5

// GenerateReference produces a candidate reference number:
// "ADM"|"REG" + 4-digit year + 6 uppercase alphanumerics.
func GenerateReference(dept id.Dept, now time.Time) (string, error) {
	buf := make([]byte, referenceSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}
	for i := range buf {
		buf[i] = referenceAlphabet[int(buf[i])%len(referenceAlphabet)]
	}
	return fmt.Sprintf("%s%04d%s", dept.ReferencePrefix(), now.Year(), string(buf)), nil
}
