package auth

import "errors"

var (
	UserBlockedErr  = errors.New("user blocked")
	WeakPasswordErr = errors.New("password too weak")
)
