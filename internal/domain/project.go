package domain

// Project tracker entities, mirroring the Supabase tables
// projects / requirements / comments / attachments.

// ProjectStatus is either "active" or "not-launched".
type ProjectStatus = string

// ProjectPriority is "high", "medium" or "low".
type ProjectPriority = string

// Project is one subsidiary business tracked on the dashboard.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    ProjectStatus   `json:"status"`
	Priority  ProjectPriority `json:"priority"`
	Category  string          `json:"category"`
	Icon      string          `json:"icon"`
	Summary   string          `json:"summary"`
	Notes     string          `json:"notes"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`

	Requirements []Requirement `json:"requirements"`
	Comments     []Comment     `json:"comments"`
	Attachments  []Attachment  `json:"attachments"`
}

// Requirement is one checklist item on a project.
type Requirement struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Text      string   `json:"text"`
	Done      bool     `json:"done"`
	Tags      []string `json:"tags"`
	SortOrder int      `json:"sort_order"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// Comment is a free-form note on a project.
type Comment struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Attachment is a file stored in the attachments bucket with a row
// pointing at it.
type Attachment struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	FileName  string `json:"file_name"`
	FilePath  string `json:"file_path"`
	FileType  string `json:"file_type,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ProjectInsert is the payload for creating a project.
type ProjectInsert struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Summary  string `json:"summary"`
	Notes    string `json:"notes"`
}

// RequirementInsert is the payload for adding a requirement.
type RequirementInsert struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}
