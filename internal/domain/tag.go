package domain

type Tag struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(50);not null;uniqueIndex:ux_tags_name" json:"name"`
	Color string `gorm:"type:varchar(7);not null" json:"color"`
}

func (Tag) TableName() string { return "tags" }

type DefectTag struct {
	DefectID int64 `gorm:"primaryKey;autoIncrement:false" json:"defect_id"`
	TagID    int64 `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
}

func (DefectTag) TableName() string { return "defect_tags" }

// DefaultTags is the seeded tag directory.
var DefaultTags = []Tag{
	{Name: "Frontend", Color: "#61DAFB"},
	{Name: "Backend", Color: "#8CC84B"},
	{Name: "UI/UX", Color: "#FF6384"},
	{Name: "Database", Color: "#36A2EB"},
	{Name: "API", Color: "#FFCE56"},
	{Name: "Security", Color: "#FF5722"},
	{Name: "Performance", Color: "#9C27B0"},
	{Name: "Documentation", Color: "#3F51B5"},
	{Name: "Testing", Color: "#2196F3"},
	{Name: "Deployment", Color: "#03A9F4"},
	{Name: "Integration", Color: "#00BCD4"},
	{Name: "Configuration", Color: "#009688"},
}
