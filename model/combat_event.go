package model

import (
	"time"

	"gorm.io/datatypes"
)

// CombatEvent is one dispatched bot message persisted for later analysis.
type CombatEvent struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string         `gorm:"uniqueIndex:idx_combat_event_id;size:36;not null" json:"event_id"`
	MatchID   string         `gorm:"index:idx_combat_match;size:36;not null" json:"match_id"`
	Frame     uint64         `gorm:"index:idx_combat_match" json:"frame"`
	Kind      string         `gorm:"index:idx_combat_kind;size:32;not null" json:"kind"`
	Actor     int            `json:"actor"`
	Payload   datatypes.JSON `json:"payload"`
	SentAt    time.Time      `json:"sent_at"`
	CreatedAt time.Time      `gorm:"index:idx_combat_created;autoCreateTime:milli" json:"created_at"`
}

// MatchSummary is the final tally of a match, written on shutdown.
type MatchSummary struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID   string    `gorm:"uniqueIndex;size:36;not null" json:"match_id"`
	Frames    uint64    `json:"frames"`
	Bots      int       `json:"bots"`
	Kills     int       `json:"kills"`
	Shots     int       `json:"shots"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}
