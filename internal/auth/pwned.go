package auth

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"saaskit_backend/internal/logger"
)

const defaultPwnedBaseURL = "https://api.pwnedpasswords.com"

// PwnedChecker queries the HIBP range API. Only the first 5 hex chars of
// the password's sha1 leave the process (k-anonymity).
type PwnedChecker struct {
	client  *http.Client
	baseURL string
	enabled bool
}

func NewPwnedChecker(enabled bool) *PwnedChecker {
	return &PwnedChecker{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: defaultPwnedBaseURL,
		enabled: enabled,
	}
}

// NewPwnedCheckerWithBaseURL exists for tests.
func NewPwnedCheckerWithBaseURL(baseURL string) *PwnedChecker {
	return &PwnedChecker{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
		enabled: true,
	}
}

// IsCompromised reports whether the password appears in the breach
// database. Network or API failures are treated as "not compromised" —
// the check must never block sign-up.
func (p *PwnedChecker) IsCompromised(password string) bool {
	if !p.enabled {
		return false
	}

	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	resp, err := p.client.Get(fmt.Sprintf("%s/range/%s", p.baseURL, prefix))
	if err != nil {
		logger.Warn("pwned password check failed, treating as clean", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("pwned password API returned non-200, treating as clean", "status", resp.StatusCode)
		return false
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		// Lines are "SUFFIX:COUNT".
		candidate, _, found := strings.Cut(line, ":")
		if found && strings.EqualFold(candidate, suffix) {
			return true
		}
	}
	return false
}
