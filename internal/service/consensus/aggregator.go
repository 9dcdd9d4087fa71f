package consensus

import (
	"math"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
)

// Strength thresholds on the agreement ratio (winning weight / total weight).
const (
	strongThreshold   = 0.7
	moderateThreshold = 0.5
)

// ValidateRecord rejects records that violate basic type constraints
// before they reach the vote. Callers are expected to drop the offending
// record and continue with the remainder.
func ValidateRecord(r *models.SignalRecord) error {
	if !r.Signal.IsValid() {
		return &InvalidRecordError{Timeframe: r.Timeframe, Reason: "unknown direction " + string(r.Signal)}
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return &InvalidRecordError{Timeframe: r.Timeframe, Reason: "confidence out of [0,100]"}
	}
	if !domrepo.IsValidTimeframe(domrepo.Timeframe(r.Timeframe)) {
		return &InvalidRecordError{Timeframe: r.Timeframe, Reason: "unknown timeframe"}
	}
	if r.EntryPrice < 0 || r.StopLoss < 0 || r.TakeProfit < 0 {
		return &InvalidRecordError{Timeframe: r.Timeframe, Reason: "negative price level"}
	}
	return nil
}

// Aggregate combines per-timeframe signal records into one consensus
// recommendation. marketPrice <= 0 means the live price is unavailable
// and level correction degrades per the corrector contract.
//
// Pure function over its inputs: the record timestamp is the latest
// contributing record's timestamp, so identical inputs yield identical
// output.
func Aggregate(records []models.SignalRecord, marketPrice float64) (*models.ConsensusRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoSignals
	}

	var buyW, sellW, neutralW float64
	for i := range records {
		w := domrepo.Weight(domrepo.Timeframe(records[i].Timeframe))
		switch records[i].Signal {
		case models.Buy:
			buyW += w
		case models.Sell:
			sellW += w
		default:
			neutralW += w
		}
	}
	totalW := buyW + sellW + neutralW

	// Strictly greatest bucket wins; a Buy/Sell tie (including the
	// all-Neutral degenerate case) resolves to Neutral.
	signal := models.Neutral
	winningW := neutralW
	switch {
	case buyW > sellW && buyW > neutralW:
		signal = models.Buy
		winningW = buyW
	case sellW > buyW && sellW > neutralW:
		signal = models.Sell
		winningW = sellW
	}

	ratio := 0.0
	if totalW > 0 {
		ratio = winningW / totalW
	}

	primary := selectPrimary(records, signal)

	entry, stop, target := Correct(signal, primary.EntryPrice, primary.StopLoss, primary.TakeProfit, marketPrice)
	metrics := ComputeTradeMetrics(entry, stop, target)

	rec := &models.ConsensusRecord{
		Symbol:              records[0].Symbol,
		Signal:              signal,
		Confidence:          math.Round(ratio * 100),
		Strength:            strengthFor(ratio),
		AgreementRatio:      ratio,
		PrimaryTimeframe:    primary.Timeframe,
		EntryPrice:          entry,
		StopLoss:            stop,
		TakeProfit:          target,
		RiskRewardRatio:     metrics.RiskReward,
		RiskPercent:         metrics.RiskPercent,
		PerTimeframeSignals: records,
		Timestamp:           latestTimestamp(records),
	}
	if marketPrice > 0 {
		rec.MarketPrice = marketPrice
	}
	return rec, nil
}

// selectPrimary picks the record whose price levels the consensus adopts:
// the longest timeframe agreeing with the consensus signal, then the
// longest timeframe present at all, then input order.
func selectPrimary(records []models.SignalRecord, signal models.Direction) *models.SignalRecord {
	for _, tf := range domrepo.PreferenceOrder() {
		for i := range records {
			if records[i].Timeframe == string(tf) && records[i].Signal == signal {
				return &records[i]
			}
		}
	}
	for _, tf := range domrepo.PreferenceOrder() {
		for i := range records {
			if records[i].Timeframe == string(tf) {
				return &records[i]
			}
		}
	}
	return &records[0]
}

func strengthFor(ratio float64) models.Strength {
	switch {
	case ratio > strongThreshold:
		return models.StrengthStrong
	case ratio > moderateThreshold:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

func latestTimestamp(records []models.SignalRecord) time.Time {
	latest := records[0].Timestamp
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(latest) {
			latest = records[i].Timestamp
		}
	}
	return latest
}
