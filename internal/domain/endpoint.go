// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	MaxEndpointIDLen = 36
	MaxLangLen       = 7

	// DefaultLang is the caption language used until an endpoint picks one.
	DefaultLang = LangCode("ES")
)

var (
	ErrLangEmpty   = errors.New("language code empty")
	ErrLangTooLong = errors.New("language code too long")
)

type (
	// EndpointID is an opaque connection identifier.
	EndpointID string

	// LangCode is an uppercase target-language code as the translation
	// backend expects it ("ES", "EN", "PT-BR", ...).
	LangCode string
)

// Endpoint represents one connected participant's session.
type Endpoint struct {
	ID          EndpointID `json:"id"`
	Lang        LangCode   `json:"lang"`
	ConnectedAt time.Time  `json:"connected_at"`
}

// NewEndpoint is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewEndpoint(id EndpointID) *Endpoint {
	return &Endpoint{ID: id, Lang: DefaultLang, ConnectedAt: time.Now()}
}

// SetLang normalizes and stores a caption language preference.
func (e *Endpoint) SetLang(raw string) error {
	lang, err := ParseLang(raw)
	if err != nil {
		return err
	}
	e.Lang = lang
	return nil
}

// ParseLang validates a raw language code from the wire.
func ParseLang(raw string) (LangCode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrLangEmpty
	}
	if len(s) > MaxLangLen {
		return "", ErrLangTooLong
	}
	return LangCode(s), nil
}
