package apperror

// Code represents a unique error code for the scanner.
type Code string

// General error codes.
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Quote-source error codes. All of these are recoverable at the candidate
// size level: the optimizer treats them as "no quote", never as fatal.
const (
	CodeVenueUnreachable Code = "VENUE_UNREACHABLE"
	CodeQuoteTimeout     Code = "QUOTE_TIMEOUT"
	CodeNoRoute          Code = "NO_ROUTE"
	CodeZeroLiquidity    Code = "ZERO_LIQUIDITY"
	CodeQuoteReverted    Code = "QUOTE_REVERTED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeCircuitOpen      Code = "CIRCUIT_OPEN"
	CodeInvalidQuote     Code = "INVALID_QUOTE"
)

// Detection error codes.
const (
	CodeImplausibleProfit   Code = "IMPLAUSIBLE_PROFIT"
	CodeInvalidTradeSize    Code = "INVALID_TRADE_SIZE"
	CodeGasEstimationFailed Code = "GAS_ESTIMATION_FAILED"
)

// quoteFailureCodes are the codes a quote source may legitimately return
// during a scan cycle.
var quoteFailureCodes = map[Code]bool{
	CodeVenueUnreachable: true,
	CodeQuoteTimeout:     true,
	CodeNoRoute:          true,
	CodeZeroLiquidity:    true,
	CodeQuoteReverted:    true,
	CodeRateLimited:      true,
	CodeCircuitOpen:      true,
	CodeInvalidQuote:     true,
}

// IsQuoteFailure reports whether err is a recoverable quote failure.
func IsQuoteFailure(err error) bool {
	return quoteFailureCodes[GetCode(err)]
}
