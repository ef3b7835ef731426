package domain

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Defect struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string     `gorm:"type:varchar(100);not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Severity     Severity   `gorm:"type:varchar(16);not null" json:"severity"`
	Status       Status     `gorm:"type:varchar(16);not null" json:"status"`
	SerialNumber string     `gorm:"type:varchar(32);not null;uniqueIndex:ux_defects_serial_number" json:"serial_number"`
	AssignedTo   *int64     `gorm:"index" json:"assigned_to"`
	CreatedBy    int64      `gorm:"not null;index" json:"created_by"`
	IsDeleted    bool       `gorm:"not null;index" json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at"`
	DeletedBy    *int64     `json:"deleted_by"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (Defect) TableName() string { return "defects" }

// DefectVersion is the pre-image of a defect captured just before an update.
type DefectVersion struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DefectID      int64     `gorm:"not null;uniqueIndex:ux_defect_versions_number,priority:1" json:"defect_id"`
	VersionNumber int       `gorm:"not null;uniqueIndex:ux_defect_versions_number,priority:2" json:"version_number"`
	Title         string    `gorm:"type:varchar(100);not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ModifiedBy    int64     `gorm:"not null" json:"modified_by"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (DefectVersion) TableName() string { return "defect_versions" }

type Attachment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DefectID  int64     `gorm:"not null;index" json:"defect_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Attachment) TableName() string { return "defect_attachments" }

// NewDefect carries the validated fields of a create request.
type NewDefect struct {
	Title       string
	Description string
	Severity    Severity
	AssignedTo  *int64
	Tags        []string
	Attachments []string
}

// DefectPatch lists the fields an update may touch. Absent fields are left unchanged.
type DefectPatch struct {
	Title       Field[string]   `json:"title"`
	Description Field[string]   `json:"description"`
	Severity    Field[Severity] `json:"severity"`
	Status      Field[Status]   `json:"status"`
	AssignedTo  Field[*int64]   `json:"assigned_to"`
	Tags        Field[[]string] `json:"tags"`
}

// Columns returns the column updates for the present scalar fields.
func (p DefectPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title.Set {
		cols["title"] = strings.TrimSpace(p.Title.Value)
	}
	if p.Description.Set {
		cols["description"] = strings.TrimSpace(p.Description.Value)
	}
	if p.Severity.Set {
		cols["severity"] = p.Severity.Value
	}
	if p.Status.Set {
		cols["status"] = p.Status.Value
	}
	if p.AssignedTo.Set {
		cols["assigned_to"] = p.AssignedTo.Value
	}
	return cols
}

type TagRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefectAggregate is the read model returned to clients.
type DefectAggregate struct {
	Defect
	CreatedByName  string        `json:"created_by_name"`
	AssignedToName *string       `json:"assigned_to_name"`
	Tags           []TagRef      `json:"tags"`
	Attachments    []Attachment  `json:"attachments"`
	Comments       []CommentView `json:"comments"`
}

type DefectFilter struct {
	Status     Status
	Severity   Severity
	AssignedTo *int64
	Page       int
	Limit      int
}

type DefectPage struct {
	Defects []Defect `json:"defects"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}
