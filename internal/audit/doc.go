// Package audit provides an audit trail of SADET runs.
//
// Every export and scan run is recorded as one JSON Lines entry, by default
// under ~/.sadet/audit.jsonl (override with the SADET_AUDIT_LOG environment
// variable). The file rotates once it grows past 10 MB.
//
// Each entry contains a timestamp, a run UUID, the operation, and
// operation-specific details such as the input type and the produced archive
// path.
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the run continues without error.
//
// Use ReadEntries() to parse the audit log for display. Malformed entries
// are silently skipped to handle partial writes.
package audit
