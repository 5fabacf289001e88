package metrics

import (
	"errors"

	"github.com/songzhibin97/merchant/internal/trading"
)

// ReasonOf classifies a trade failure for the TradeFailures counter.
func ReasonOf(err error) string {
	var (
		conversion *trading.ConversionError
		malformed  *trading.MalformedResponseError
		venue      *trading.VenueError
	)
	switch {
	case errors.Is(err, trading.ErrOrderNotFound):
		return ReasonNotFound
	case errors.As(err, &conversion):
		return ReasonConversion
	case errors.As(err, &malformed):
		return ReasonMalformed
	case errors.As(err, &venue):
		return ReasonVenue
	default:
		return ReasonInvalid
	}
}
