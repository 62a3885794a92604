package auth

import (
	"chat-hub/errors"
	"fmt"
)

// TokenAuthenticator gates every incoming connection: called once with the
// handshake credential, before the connection may ever reach Joined.
type TokenAuthenticator struct{}

func NewTokenAuthenticator() TokenAuthenticator {
	return TokenAuthenticator{}
}

func (TokenAuthenticator) Authenticate(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token missing", errors.ErrUnauthenticated)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	return claims.Username, nil
}
