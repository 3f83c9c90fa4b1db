package stores

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// gormStore implements the MedicalStore operations shared by the SQLite and
// Postgres stores; each concrete store supplies the dialector via Connect.
type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) migrate() error {
	return s.db.AutoMigrate(&Conversation{}, &Message{}, &Prescription{}, &Medication{})
}

// CreateConversation opens a new conversation for a user.
func (s *gormStore) CreateConversation(userID uint, title string) (*Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	conv := Conversation{
		UserID:         userID,
		Title:          title,
		LastActivityAt: time.Now(),
	}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

// AppendMessage records one message and bumps the conversation's
// last-activity timestamp in the same transaction.
func (s *gormStore) AppendMessage(conversationID uint, role, content string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		msg := Message{
			ConversationID: conversationID,
			Role:           role,
			Content:        content,
			Timestamp:      now,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to create message record: %w", err)
		}

		result := tx.Model(&Conversation{}).
			Where("id = ?", conversationID).
			Update("last_activity_at", now)
		if result.Error != nil {
			return fmt.Errorf("failed to update conversation activity: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("conversation %d not found", conversationID)
		}
		return nil
	})
}

func (s *gormStore) GetConversationMessages(conversationID uint) ([]Message, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var msgs []Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return msgs, nil
}

func (s *gormStore) ListConversationsForUser(userID uint) ([]Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var convs []Conversation
	err := s.db.Where("user_id = ?", userID).
		Order("last_activity_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	return convs, nil
}

// CreatePrescriptionWithMedications creates a prescription and its medication
// rows in one transaction. Entries missing a name or frequency are skipped,
// not failed.
func (s *gormStore) CreatePrescriptionWithMedications(userID uint, validUntil *time.Time, meds []MedicationInput) (*Prescription, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	prescription := Prescription{
		UserID:     userID,
		IssuedAt:   time.Now(),
		ValidUntil: validUntil,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prescription).Error; err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}
		for _, m := range meds {
			if m.Name == "" || m.Frequency == "" {
				continue
			}
			med := Medication{
				PrescriptionID: prescription.ID,
				Name:           m.Name,
				Dose:           m.Dose,
				Frequency:      m.Frequency,
			}
			if err := tx.Create(&med).Error; err != nil {
				return fmt.Errorf("failed to create medication record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Medications").First(&prescription, prescription.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload prescription: %w", err)
	}
	return &prescription, nil
}

func (s *gormStore) ListPrescriptionsForUser(userID uint) ([]Prescription, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var prescriptions []Prescription
	err := s.db.Preload("Medications").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prescriptions: %w", err)
	}
	return prescriptions, nil
}

// DeleteExpiredPrescriptions removes prescriptions whose valid_until has
// passed, along with their medications. Returns the number of prescriptions
// removed.
func (s *gormStore) DeleteExpiredPrescriptions(now time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var expired []Prescription
	if err := s.db.Where("valid_until IS NOT NULL AND valid_until < ?", now).Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("failed to find expired prescriptions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range expired {
			if err := tx.Where("prescription_id = ?", p.ID).Delete(&Medication{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&Prescription{}, p.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired prescriptions: %w", err)
	}
	return int64(len(expired)), nil
}

func (s *gormStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func (s *gormStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
