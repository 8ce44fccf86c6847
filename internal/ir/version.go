package ir

// Version constants for traces and the binary.
const (
	// TraceVersion is the version of the canonical check trace format.
	TraceVersion = "1"

	// ModelVersion is the auramodel release version.
	ModelVersion = "0.1.0"
)
