package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// KeyEmailVerification is the Redis key holding the pending email verification code
func KeyEmailVerification(uid string) string {
	return "user:verify:email:" + uid
}

// KeyEmailVerificationAttempts counts wrong guesses against the pending code
func KeyEmailVerificationAttempts(uid string) string {
	return "user:verify:email:attempts:" + uid
}

// KeySession is the Redis key holding a serialized user session
func KeySession(sid string) string {
	return "user:session:" + sid
}

// KeyUserCache is the Redis key of the cached user snapshot
func KeyUserCache(uid string) string {
	return "user:cache:" + uid
}

// GenOTPCode generates a secure random 6-digit code as a zero-padded string
func GenOTPCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b[:])%1000000), nil
}
