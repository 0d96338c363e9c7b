package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/supplydesk/config"
)

// CredentialProvider checks admin username/password pairs.
type CredentialProvider interface {
	Verify(username, password string) bool
}

// StaticCredentials holds one admin account with a bcrypt-hashed password.
type StaticCredentials struct {
	username string
	hash     string
}

// NewStaticCredentials hashes password once up front.
func NewStaticCredentials(username, password string) (*StaticCredentials, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &StaticCredentials{username: username, hash: hash}, nil
}

// NewHashedCredentials takes a bcrypt hash, such as one printed by
// `supplydesk admin:hash`, so the plain password never sits in config.
func NewHashedCredentials(username, hash string) (*StaticCredentials, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
	}
	return &StaticCredentials{username: username, hash: hash}, nil
}

// CredentialsFromConfig reads ADMIN_USERNAME and either ADMIN_PASSWORD_HASH
// or, when no hash is set, ADMIN_PASSWORD.
func CredentialsFromConfig() (*StaticCredentials, error) {
	if hash := config.AdminPasswordHash(); hash != "" {
		return NewHashedCredentials(config.AdminUsername(), hash)
	}
	return NewStaticCredentials(config.AdminUsername(), config.AdminPassword())
}

func (c *StaticCredentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := CheckPassword(c.hash, password)
	return userOK && passOK
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
