package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. Tests lower it.
var Cost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// BurnPassword spends the same time as CheckPassword does for a real user,
// so failed logins for unknown usernames are not faster.
func BurnPassword(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword(NewKey())
	})
	CheckPassword(dummyHash, password)
}

// NewKey returns a random 40 character hex token key.
func NewKey() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return hex.EncodeToString(b)
}
