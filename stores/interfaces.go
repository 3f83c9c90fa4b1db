package stores

import (
	"time"

	"gorm.io/gorm"
)

// Conversation holds metadata for a persisted chat conversation. Messages are
// cascade-deleted with it.
type Conversation struct {
	gorm.Model
	UserID         uint      `gorm:"index;not null"`
	Title          string    `gorm:"type:text"`
	LastActivityAt time.Time `gorm:"not null"`
	Messages       []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// Message is one persisted message within a conversation. Append-only.
type Message struct {
	gorm.Model
	ConversationID uint      `gorm:"index;not null"`
	Role           string    `gorm:"not null"` // "user", "assistant"
	Content        string    `gorm:"type:text;not null"`
	Timestamp      time.Time `gorm:"not null"`
}

// Prescription belongs to one user and owns its medications, which are
// cascade-deleted with it.
type Prescription struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"type:text"`
	IssuedAt    time.Time
	ValidUntil  *time.Time
	Medications []Medication `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE"`
}

type Medication struct {
	gorm.Model
	PrescriptionID uint   `gorm:"index;not null"`
	Name           string `gorm:"not null"`
	Dose           string
	Frequency      string
	Description    string `gorm:"type:text"`
}

// MedicationInput is one medication row to create alongside a prescription.
type MedicationInput struct {
	Name      string
	Dose      string
	Frequency string
}

// MedicalStore abstracts the persistence the chat engine touches.
type MedicalStore interface {
	// Conversation operations. AppendMessage also bumps the conversation's
	// last-activity timestamp.
	CreateConversation(userID uint, title string) (*Conversation, error)
	AppendMessage(conversationID uint, role, content string) error
	GetConversationMessages(conversationID uint) ([]Message, error)
	ListConversationsForUser(userID uint) ([]Conversation, error)

	// Prescription operations
	CreatePrescriptionWithMedications(userID uint, validUntil *time.Time, meds []MedicationInput) (*Prescription, error)
	ListPrescriptionsForUser(userID uint) ([]Prescription, error)
	DeleteExpiredPrescriptions(now time.Time) (int64, error)

	// Connection management
	Connect() error
	Close() error

	// Health check
	Ping() error
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string `json:"type"`       // "sqlite", "postgres"
	Connection string `json:"connection"` // connection string
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
	}
}
