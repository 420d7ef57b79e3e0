package constants

// ExtractStatus is stored next to every persisted invoice row.
type ExtractStatus string

// Stable values (store these exact strings in DB).
const (
	ExtractStatusOK       ExtractStatus = "OK"       // page text obtained, fields extracted best-effort
	ExtractStatusDegraded ExtractStatus = "DEGRADED" // page text unavailable, all fields empty
)

// JobStatus tracks a document moving through the daemon queue.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusStored  JobStatus = "STORED"
	JobStatusFailed  JobStatus = "FAILED"
)
