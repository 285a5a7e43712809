package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103
	ErrCodeInvalidVersion       ErrorCode = 104

	// Data source errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeDataParseFailed       ErrorCode = 203
	ErrCodeUnsupportedDataSource ErrorCode = 204

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound      ErrorCode = 400
	ErrCodeStrategyAlreadyExists ErrorCode = 401
	ErrCodeInvalidStrategy       ErrorCode = 402
	ErrCodeStrategyRuntimeError  ErrorCode = 403
	ErrCodeStrategyLoadFailed    ErrorCode = 404
	ErrCodeVersionMismatch       ErrorCode = 405

	// Backtest errors (600-699)
	ErrCodeBacktestNotInitialized ErrorCode = 600

	// Report errors (700-799)
	ErrCodeReportWriteFailed ErrorCode = 700
)
