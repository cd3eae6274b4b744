package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	TargetType string     `gorm:"type:varchar(100);not null;index" json:"target_type"`
	TargetID   string     `gorm:"type:varchar(100)" json:"target_id,omitempty"`
	Metadata   JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// StringList type for GORM JSONB arrays (coverage type tags)
type StringList []string

// Value returns json value, implement driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan scan value into a string slice, implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := []string{}
	err := json.Unmarshal(bytes, &result)
	*l = StringList(result)
	return err
}

// Common audit actions
const (
	AuditActionUserRegister         = "user.register"
	AuditActionUserVerify           = "user.verify"
	AuditActionAccessRequest        = "access.request"
	AuditActionAccessRespond        = "access.respond"
	AuditActionAccessRevoke         = "access.revoke"
	AuditActionCredentialGenerate   = "credential.generate"
	AuditActionCredentialScan       = "credential.scan"
	AuditActionConnectionRequest    = "insurance.connection.request"
	AuditActionConnectionApprove    = "insurance.connection.approve"
	AuditActionConnectionReject     = "insurance.connection.reject"
	AuditActionConnectionDisconnect = "insurance.connection.disconnect"
	AuditActionBillingCharge        = "insurance.billing.charge"
	AuditActionClaimSubmit          = "claim.submit"
	AuditActionClaimRespond         = "claim.respond"
	AuditActionClaimPay             = "claim.pay"
)
