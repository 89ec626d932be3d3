package exception

import "errors"

var (
	ErrQuoteNotFound    = errors.New("quote: unknown company")
	ErrCompanyNameEmpty = errors.New("quote: company name is empty")
)
