package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// PairingState is one of PairingInit, PairingLogin or PairingConnected
type PairingState interface {
	Name() string
	pairingState()
}

// PairingInit is the state right after the device asked for a nonce
type PairingInit struct{}

// PairingLogin is entered when the device opened the browser login page
type PairingLogin struct{}

// PairingConnected is terminal: a logged in browser confirmed the nonce
type PairingConnected struct {
	Tokens TokenPair
}

func (PairingInit) Name() string      { return "INIT" }
func (PairingLogin) Name() string     { return "LOGIN" }
func (PairingConnected) Name() string { return "CONNECTED" }

func (PairingInit) pairingState()      {}
func (PairingLogin) pairingState()     {}
func (PairingConnected) pairingState() {}

// PairingSession binds a time tracker device to a browser session
type PairingSession struct {
	Nonce   string
	IP      string
	StartAt time.Time
	State   PairingState
}

// Connected reports whether the session reached its terminal state
func (p *PairingSession) Connected() bool {
	_, ok := p.State.(PairingConnected)
	return ok
}

// Tokens returns the issued pair once the session is connected
func (p *PairingSession) Tokens() (TokenPair, bool) {
	c, ok := p.State.(PairingConnected)
	return c.Tokens, ok
}

type pairingRecord struct {
	Nonce   string     `json:"nonce"`
	IP      string     `json:"ip"`
	State   string     `json:"state"`
	StartAt time.Time  `json:"startAt"`
	JWT     *TokenPair `json:"jwt,omitempty"`
}

// MarshalJSON flattens the state into the stored record shape
func (p PairingSession) MarshalJSON() ([]byte, error) {
	if p.State == nil {
		return nil, fmt.Errorf("pairing session %s has no state", p.Nonce)
	}
	rec := pairingRecord{
		Nonce:   p.Nonce,
		IP:      p.IP,
		State:   p.State.Name(),
		StartAt: p.StartAt,
	}
	if tokens, ok := p.Tokens(); ok {
		rec.JWT = &tokens
	}
	return json.Marshal(rec)
}

// UnmarshalJSON restores the state variant from the stored record
func (p *PairingSession) UnmarshalJSON(data []byte) error {
	var rec pairingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	switch rec.State {
	case PairingInit{}.Name():
		p.State = PairingInit{}
	case PairingLogin{}.Name():
		p.State = PairingLogin{}
	case PairingConnected{}.Name():
		if rec.JWT == nil {
			return fmt.Errorf("connected pairing session %s carries no tokens", rec.Nonce)
		}
		p.State = PairingConnected{Tokens: *rec.JWT}
	default:
		return fmt.Errorf("unknown pairing state %q", rec.State)
	}

	p.Nonce = rec.Nonce
	p.IP = rec.IP
	p.StartAt = rec.StartAt
	return nil
}
