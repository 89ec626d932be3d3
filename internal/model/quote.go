package model

// Quote is a snapshot of a company's simulated market price at one tick.
// It is immutable once published; consumers receive copies by value.
type Quote struct {
	Exchange string  `json:"exchange"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
	Volume   int     `json:"volume"`
	Open     float64 `json:"open"`
	Shares   int     `json:"shares"`
}
