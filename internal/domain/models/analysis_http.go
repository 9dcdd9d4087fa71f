package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	// Comma-separated list is split by the handler; empty means all supported.
	Timeframes string `query:"timeframes" json:"timeframes"`
}

type SignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=5m 15m 1h 4h 1d"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
	// RFC3339 or unix seconds; when either is set the read goes to the
	// durable archive instead of the fast store.
	From string `query:"from" json:"from,omitempty"`
	To   string `query:"to" json:"to,omitempty"`
}

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
