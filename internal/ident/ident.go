// Package ident generates and classifies stable identifiers for sessions
// and projected entities.
package ident

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Format classifies an identifier string.
type Format string

const (
	FormatUUID     Format = "uuid"
	FormatFallback Format = "fallback"
	FormatInvalid  Format = "invalid"
)

var (
	uuidRegex     = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[1-8][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	fallbackRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// New returns a fresh id, UUID v4 preferred with a ULID fallback when the
// system random source is unavailable.
func New() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return NewFallback()
	}
	return id.String()
}

// NewFallback returns a ULID, which classifies as the fallback id format.
func NewFallback() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Classify reports which id format a string uses. Leading and trailing
// whitespace is ignored; an empty string is invalid.
func Classify(value string) Format {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return FormatInvalid
	}
	if uuidRegex.MatchString(trimmed) {
		return FormatUUID
	}
	if fallbackRegex.MatchString(trimmed) {
		return FormatFallback
	}
	return FormatInvalid
}

// IsUUID reports whether the value is a well-formed UUID.
func IsUUID(value string) bool {
	return Classify(value) == FormatUUID
}
