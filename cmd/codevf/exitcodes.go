package main

// Exit codes for the CLI
const (
	ExitSuccess             = 0
	ExitGeneralError        = 1
	ExitConnectionError     = 2
	ExitConfigError         = 3
	ExitNotFound            = 4
	ExitValidationError     = 5
	ExitRateLimited         = 6
	ExitServerError         = 7
	ExitInsufficientCredits = 8
	ExitTimeout             = 9
)
