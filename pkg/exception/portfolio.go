package exception

import "errors"

var (
	ErrInvalidShareCount  = errors.New("portfolio: share count must be positive")
	ErrInsufficientFunds  = errors.New("portfolio: cannot buy, not enough money")
	ErrInsufficientShares = errors.New("portfolio: cannot sell, not enough stocks")
)
