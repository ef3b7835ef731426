package domain

import "time"

type AuditType string

const (
	AuditLoginSuccess   AuditType = "LOGIN_SUCCESS"
	AuditLoginFailure   AuditType = "LOGIN_FAILURE"
	AuditDefectCreate   AuditType = "DEFECT_CREATE"
	AuditDefectUpdate   AuditType = "DEFECT_UPDATE"
	AuditDefectDelete   AuditType = "DEFECT_DELETE"
	AuditDefectRestore  AuditType = "DEFECT_RESTORE"
	AuditCommentCreate  AuditType = "COMMENT_CREATE"
	AuditCommentUpdate  AuditType = "COMMENT_UPDATE"
	AuditCommentDelete  AuditType = "COMMENT_DELETE"
	AuditProfileUpdate  AuditType = "PROFILE_UPDATE"
	AuditSettingsUpdate AuditType = "SETTINGS_UPDATE"
)

func (t AuditType) Valid() bool {
	switch t {
	case AuditLoginSuccess, AuditLoginFailure,
		AuditDefectCreate, AuditDefectUpdate, AuditDefectDelete, AuditDefectRestore,
		AuditCommentCreate, AuditCommentUpdate, AuditCommentDelete,
		AuditProfileUpdate, AuditSettingsUpdate:
		return true
	}
	return false
}

type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Type       AuditType `gorm:"type:varchar(32);not null;index" json:"type"`
	UserID     *int64    `gorm:"index" json:"user_id"`
	EntityType string    `gorm:"type:varchar(32);index:ix_audit_logs_entity,priority:1" json:"entity_type"`
	EntityID   *int64    `gorm:"index:ix_audit_logs_entity,priority:2" json:"entity_id"`
	Changes    JSON      `json:"changes"`
	IP         string    `gorm:"type:text" json:"ip"`
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// AuditEntry is what callers hand to the audit recorder.
type AuditEntry struct {
	Type       AuditType
	UserID     *int64
	EntityType string
	EntityID   *int64
	Changes    any
	IP         string
	UserAgent  string
}

type AuditFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       AuditType
	UserID     *int64
	EntityType string
	EntityID   *int64
	Limit      int
	Offset     int
}
