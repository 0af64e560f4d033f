package auth

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pwnedSuffix(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[5:]
}

func TestPwnedCheckerCompromised(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/range/"))
		// Range responses list unrelated suffixes around the match.
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n")
		fmt.Fprintf(w, "%s:12345\r\n", pwnedSuffix("password123"))
		fmt.Fprintf(w, "011053FD0102E94D6AE2F8B83D76FAF94F6:1\r\n")
	}))
	defer server.Close()

	checker := NewPwnedCheckerWithBaseURL(server.URL)
	assert.True(t, checker.IsCompromised("password123"))
	assert.False(t, checker.IsCompromised("anUncommonPassphrase-2026"))
}

func TestPwnedCheckerFailOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	checker := NewPwnedCheckerWithBaseURL(server.URL)
	assert.False(t, checker.IsCompromised("password123"))

	// Unreachable endpoint must also report clean.
	server.Close()
	assert.False(t, checker.IsCompromised("password123"))
}

func TestPwnedCheckerDisabled(t *testing.T) {
	checker := NewPwnedChecker(false)
	assert.False(t, checker.IsCompromised("password123"))
}
