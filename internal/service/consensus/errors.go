package consensus

import (
	"errors"
	"fmt"
)

// ErrNoSignals is returned when aggregation is called with zero records.
var ErrNoSignals = errors.New("consensus: no signal records")

// InvalidRecordError marks a signal record that violates basic type
// constraints and must be excluded before aggregation.
type InvalidRecordError struct {
	Timeframe string
	Reason    string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid signal record (tf=%s): %s", e.Timeframe, e.Reason)
}
