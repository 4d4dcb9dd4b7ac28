package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Exit code 2 is commonly used by shells for builtin misuse, so we avoid it.

	// ExitCodeHandledError indicates that an error occurred and was already logged, so it should not be printed again
	// before exiting.
	ExitCodeHandledError = 3

	// ExitCodeVerificationFailed indicates a manifest failed verification: a source no longer matches its checksum
	// or a reference between records is dangling.
	ExitCodeVerificationFailed = 7
)
