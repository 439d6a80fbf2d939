package entity

import "time"

// SyncFields are system columns tracking remote reconciliation state of a
// locally stored record. A record written while offline carries Dirty=true
// until the sync worker replays it against the remote system.
type SyncFields struct {
	// ServerID is the remote identifier once the record is confirmed remotely
	ServerID *int64 `db:"server_id" json:"serverId,omitempty"`

	// Dirty marks a locally originated record not yet confirmed remotely
	Dirty bool `db:"dirty" json:"dirty"`

	// LastSynced is the time of the last successful reconciliation
	LastSynced *time.Time `db:"last_synced" json:"lastSynced,omitempty"`
}

// IsSynced reports whether the record is confirmed by the remote system.
func (s *SyncFields) IsSynced() bool {
	return s.ServerID != nil && !s.Dirty
}

// MarkSynced records a successful remote confirmation.
func (s *SyncFields) MarkSynced(serverID int64, at time.Time) {
	s.ServerID = &serverID
	s.Dirty = false
	s.LastSynced = &at
}

// MarkDirty flags the record as locally originated / locally modified.
func (s *SyncFields) MarkDirty() {
	s.Dirty = true
}
