package cli

// Exit codes for blocksync.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitChanges indicates diff --exit-code found differing revisions.
	ExitChanges = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)
