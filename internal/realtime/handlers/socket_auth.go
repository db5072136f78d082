package handlers

import (
	"errors"

	"github.com/carrier-im/carrier/internal/wire"
)

// SocketHandshake is the validated handshake auth payload.
type SocketHandshake struct {
	Token string
}

// ValidateSocketAuthPayload validates the handshake auth payload supplied at
// connect time. A missing token refuses the connection; this is the only
// fault surfaced to the initiating client.
func ValidateSocketAuthPayload(auth wire.SocketAuthPayload) (SocketHandshake, error) {
	if auth.Token == "" {
		return SocketHandshake{}, errors.New("missing authentication token")
	}
	return SocketHandshake{Token: auth.Token}, nil
}
