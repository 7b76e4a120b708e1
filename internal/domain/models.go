// Package domain defines the persistence models for the sender whitelist,
// the bot settings, and ingested document records. These types are mapped
// with GORM and form the relational data layer of the assistant; the chunk
// vectors themselves live in the external vector store.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// WhitelistEntry represents a sender permitted to invoke the assistant.
// Phone numbers are stored verbatim (digits before the "@" of the WhatsApp
// JID); no country-code normalization is applied, so authorization is an
// exact string match.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - PhoneNumber: unique sender identifier.
//   - DisplayName: optional human-readable label shown in the admin panel.
//   - TriggerWord: optional per-sender trigger override; empty means the
//     global trigger from Settings applies.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Rows are hard-deleted on removal: a removed number must be addable again,
// and a soft-deleted row would keep holding the unique phone_number index.
type WhitelistEntry struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(32);not null;uniqueIndex:ux_whitelist_phone"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(128)"`
	TriggerWord string    `json:"trigger_word" gorm:"type:varchar(64)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for WhitelistEntry.
func (WhitelistEntry) TableName() string { return "whitelist" }

// Setting is the persisted singleton row backing the runtime settings
// snapshot. Exactly one row with ID = SettingsRowID exists after boot;
// updates overwrite it (last write wins, no history).
type Setting struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Model       string    `json:"model"        gorm:"type:varchar(128);not null"`
	TriggerWord string    `json:"trigger_word" gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Setting.
func (Setting) TableName() string { return "settings" }

// SettingsRowID is the fixed primary key of the singleton settings row.
const SettingsRowID = "singleton"

// Document records a file ingested into the knowledge base. The extracted
// chunks and their embeddings live in the external vector store keyed by
// this document's ID; the row exists so the admin panel can list what the
// bot has been taught.
type Document struct {
	ID         string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Filename   string         `json:"filename"   gorm:"type:varchar(255);not null"`
	Title      string         `json:"title"      gorm:"type:varchar(255);not null"`
	ChunkCount int            `json:"chunk_count" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }
