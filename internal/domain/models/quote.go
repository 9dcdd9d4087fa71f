package models

// Quote is one tick of the current tradable price for a symbol.
// Timestamp is unix milliseconds as delivered by the provider.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Bid       float64 `json:"bid,omitempty"`
	Ask       float64 `json:"ask,omitempty"`
	Timestamp int64   `json:"timestamp"`
}
