package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	"github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	xhttp "github.com/saiuppala9/ai-forex-trader/pkg/http"
	"github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

const (
	defaultRemoteTimeout  = 10 * time.Second
	defaultRemoteAttempts = 3
)

// Remote delegates per-timeframe analysis to an external model service
// over JSON/HTTP. The wire shape mirrors SignalRecord, so the response
// drops straight into the consensus pipeline after validation upstream.
type Remote struct {
	baseURL  string
	client   *xhttp.Client
	log      *logger.Logger
	attempts int
}

type RemoteOption func(*Remote)

func WithRemoteTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.client = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

func WithRemoteAttempts(n int) RemoteOption {
	return func(r *Remote) {
		if n > 0 {
			r.attempts = n
		}
	}
}

func NewRemote(baseURL string, log *logger.Logger, opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:  baseURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(defaultRemoteTimeout)),
		log:      log,
		attempts: defaultRemoteAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type remoteAnalyzeRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

// Analyze implements service.TimeframeAnalyzer. Transient failures are
// retried with linear backoff before the timeframe is given up on; the
// caller drops failed timeframes and aggregates the rest.
func (r *Remote) Analyze(ctx context.Context, symbol string, tf repository.Timeframe) (models.SignalRecord, error) {
	if r.baseURL == "" {
		return models.SignalRecord{}, fmt.Errorf("remote analyzer not configured")
	}

	payload := remoteAnalyzeRequest{Symbol: symbol, Timeframe: string(tf)}
	var rec models.SignalRecord
	var err error
	for i := 1; i <= r.attempts; i++ {
		err = r.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodPost,
			URL:     r.baseURL + "/analyze",
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    payload,
		}, &rec)
		if err == nil {
			break
		}
		if i == r.attempts {
			break
		}
		r.log.Warn("remote analysis attempt failed",
			logger.String("symbol", symbol),
			logger.String("timeframe", string(tf)),
			logger.Int("attempt", i),
			logger.Error(err),
		)
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return models.SignalRecord{}, ctx.Err()
		}
	}
	if err != nil {
		return models.SignalRecord{}, fmt.Errorf("remote analyze %s/%s: %w", symbol, tf, err)
	}

	// The service answers for the requested pair; stamp the identifiers
	// in case the upstream omits them.
	rec.Symbol = symbol
	rec.Timeframe = string(tf)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return rec, nil
}
