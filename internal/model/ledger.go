package model

// RateLimitCounter is the live fixed-window counter for one actor and
// action key. ID is derived from both so there is one row per pair.
type RateLimitCounter struct {
	ID          string `json:"id"`
	ActorID     string `json:"actorId"`
	Key         string `json:"key"`
	WindowStart int64  `json:"windowStart"`
	Count       int    `json:"count"`
}

// CounterID returns the row id for an actor and action key.
func CounterID(actorID, key string) string { return actorID + "|" + key }

// AuditEntry is an append-only record of a privileged action.
type AuditEntry struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenantId"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  int64          `json:"createdAt"`
}
