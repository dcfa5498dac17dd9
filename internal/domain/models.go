// Package domain defines the shout message types: the wire/domain Shout that
// flows through the in-memory broadcast core, and the ShoutRecord row that the
// ingestion boundary persists for audit/record-keeping. The persisted row is
// mapped with GORM.
package domain

import (
	"time"
)

// Shout is a single accepted shoutbox message. It lives in the in-memory
// history buffer and is the payload of every broadcast frame.
//
// Fields:
//   - ID: strictly increasing within a process lifetime. Positive ids are
//     real user posts; negative ids mark ambient (generated) messages.
//   - Sender: display name, trimmed and length-capped; never empty (a default
//     is substituted for blank names).
//   - Body: message text, trimmed and length-capped; never empty.
//   - CreatedAt: acceptance time (server clock, not client-submitted).
type Shout struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoutRecord is the durable audit row written for each accepted message.
// It is distinct from the in-memory history buffer: rows outlive a process
// restart and are pruned by the retention sweeper once older than the
// configured window.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ShoutID: the in-process message id; indexed for correlation with logs.
//   - Sender / Body: as accepted by the ingestion pipeline.
//   - CreatedAt: acceptance timestamp; indexed because the sweeper deletes by
//     age.
type ShoutRecord struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ShoutID   int64     `json:"shout_id"   gorm:"not null;index"`
	Sender    string    `json:"sender"     gorm:"type:varchar(64);not null"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
}

// TableName returns the database table name for ShoutRecord.
func (ShoutRecord) TableName() string { return "shouts" }
