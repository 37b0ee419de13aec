package models

import "time"

// AuditLogEntry is append-only. ActorID is always derived from the resolved
// session at record time, never supplied by the caller. Timestamp is assigned
// by the store on insert; the value here is only populated on reads.
type AuditLogEntry struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	Action    string                 `bson:"action" json:"action"`
	ActorID   string                 `bson:"actorId" json:"actorId"`
	Timestamp time.Time              `bson:"timestamp,omitempty" json:"timestamp"`
	Details   map[string]interface{} `bson:"details" json:"details"`
}
