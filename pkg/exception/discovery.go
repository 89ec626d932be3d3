package exception

import "errors"

var (
	ErrRecordNotFound       = errors.New("discovery: record not found")
	ErrRegistrationNotFound = errors.New("discovery: registration not found")
)
