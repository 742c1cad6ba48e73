package types

// Version is the canonical harness version.
// The CLI, the report format and the bridge script share this version.
const Version = "0.3.0"

// ReportVersion is the JSON report contract version written into every report.
// It tracks Version in lockstep.
const ReportVersion = Version
