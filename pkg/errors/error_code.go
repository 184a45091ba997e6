package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSignal        ErrorCode = 102
	ErrCodeInvalidTrade         ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeInvalidVersion       ErrorCode = 105

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound       ErrorCode = 200
	ErrCodeStoreUnavailable   ErrorCode = 201
	ErrCodeQueryFailed        ErrorCode = 202
	ErrCodeAssetNotFound      ErrorCode = 203
	ErrCodeNoHistoricalData   ErrorCode = 204
	ErrCodeSnapshotWriteError ErrorCode = 205

	// Strategy errors (300-399)
	ErrCodeStrategyNotFound     ErrorCode = 300
	ErrCodeUnsupportedStrategy  ErrorCode = 301
	ErrCodeStrategyConfigError  ErrorCode = 302
	ErrCodeStrategyEvalError    ErrorCode = 303
	ErrCodeDuplicateStrategy    ErrorCode = 304
	ErrCodePredictorUnavailable ErrorCode = 305

	// Execution errors (500-599)
	ErrCodeInsufficientCash     ErrorCode = 500
	ErrCodeInsufficientPosition ErrorCode = 501
	ErrCodeExecutionRace        ErrorCode = 502
	ErrCodePortfolioCorrupt     ErrorCode = 503

	// Engine errors (600-699)
	ErrCodeEngineInitFailed  ErrorCode = 600
	ErrCodeEngineAlreadyLive ErrorCode = 601
	ErrCodeSignalQueueFull   ErrorCode = 602
	ErrCodeEngineStopped     ErrorCode = 603
	ErrCodeBacktestConfigBad ErrorCode = 604
	ErrCodeBacktestNoData    ErrorCode = 605

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703
)
