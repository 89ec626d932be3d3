package model

// Portfolio stores one trading account's available cash and owned shares.
// The zero count is represented by an absent map entry.
type Portfolio struct {
	Cash   float64        `json:"cash"`
	Shares map[string]int `json:"shares"`
}

// NewPortfolio creates an empty portfolio with the given starting cash.
func NewPortfolio(cash float64) Portfolio {
	return Portfolio{
		Cash:   cash,
		Shares: make(map[string]int),
	}
}

// Amount returns the number of owned shares of the given company, 0 if none.
func (p Portfolio) Amount(name string) int {
	return p.Shares[name]
}

// Copy returns a deep copy safe to hand across component boundaries.
func (p Portfolio) Copy() Portfolio {
	shares := make(map[string]int, len(p.Shares))
	for name, count := range p.Shares {
		shares[name] = count
	}
	return Portfolio{
		Cash:   p.Cash,
		Shares: shares,
	}
}
