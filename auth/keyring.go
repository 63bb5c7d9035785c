// Package auth provides a high-level API for persisting and retrieving media server credentials from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"

	"github.com/lumen-cli/lumen/constant"
)

const (
	service = constant.Lumen
	user    = "server-token"
)

// SetToken persists the media server session token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// Token retrieves the media server session token from the system keyring.
func Token() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the media server session token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}
