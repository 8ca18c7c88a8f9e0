package apperror

// messages maps codes to default human-readable messages.
var messages = map[Code]string{
	CodeInvalidInput:       "invalid input",
	CodeConfigurationError: "configuration error",
	CodeInternalError:      "internal error",
	CodeUnknownError:       "unknown error",

	CodeVenueUnreachable: "venue unreachable",
	CodeQuoteTimeout:     "quote request timed out",
	CodeNoRoute:          "no route for token pair",
	CodeZeroLiquidity:    "pool has zero liquidity",
	CodeQuoteReverted:    "quote call reverted",
	CodeRateLimited:      "venue rate limit exceeded",
	CodeCircuitOpen:      "venue circuit breaker open",
	CodeInvalidQuote:     "venue returned malformed quote",

	CodeImplausibleProfit:   "net profit exceeds plausibility ceiling",
	CodeInvalidTradeSize:    "invalid trade size",
	CodeGasEstimationFailed: "gas estimation failed",
}
