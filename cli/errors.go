package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	InvalidArguments ErrorCode = "InvalidArguments"
	LoadFailed       ErrorCode = "LoadFailed"
	BrowserFailed    ErrorCode = "BrowserFailed"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
