// Package common defines sentinel errors shared by repositories, services
// and transports. Callers match them with errors.Is.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorValidation    = errors.New("validation error")
	ErrorNotConfigured = errors.New("not configured")

	// transport errors
	ErrorDelivery = errors.New("delivery failed")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
