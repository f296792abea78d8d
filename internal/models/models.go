package models

type SaleType string

type ExpenseType string

type Priority string

type TaskStatus string

type LeadStatus string

type ContentType string

type ContentStatus string

const (
	SaleTypeCall     SaleType = "call"
	SaleTypeWebsite  SaleType = "website"
	SaleTypeHandCash SaleType = "hand_cash"

	// SourceBatch is not a Sale type: batch revenue comes from BatchProject
	// rosters and exists only as a selectable stats source.
	SourceBatch = "batch"

	ExpenseTypeAdCost    ExpenseType = "adcost"
	ExpenseTypeSalary    ExpenseType = "salary"
	ExpenseTypeRent      ExpenseType = "rent"
	ExpenseTypeUtilities ExpenseType = "utilities"
	ExpenseTypeMarketing ExpenseType = "marketing"
	ExpenseTypeOther     ExpenseType = "other"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"

	LeadStatusActive    LeadStatus = "active"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"

	ContentTypeVideo   ContentType = "video"
	ContentTypeImage   ContentType = "image"
	ContentTypeArticle ContentType = "article"
	ContentTypeCourse  ContentType = "course"

	ContentStatusCreation ContentStatus = "creation"
	ContentStatusEditing  ContentStatus = "editing"
	ContentStatusReady    ContentStatus = "ready"
	ContentStatusAds      ContentStatus = "ads"
)

// Timestamps are kept as the ISO strings the dashboard writes: CreatedAt is a
// full RFC3339 instant, Date fields are plain Y-M-D strings. The stats engine
// matches calendar days by string prefix, so the raw form is authoritative.

type Sale struct {
	ID        string   `json:"id"`
	AgentID   string   `json:"agentId,omitempty"`
	Type      SaleType `json:"type"`
	Amount    int64    `json:"amount"`
	AdCost    int64    `json:"adCost"`
	CreatedAt string   `json:"createdAt"`
	Comment   string   `json:"comment,omitempty"`
}

type Expense struct {
	ID          string      `json:"id"`
	Type        ExpenseType `json:"type"`
	Amount      int64       `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	AgentID     string      `json:"agentId,omitempty"`
	CreatedAt   string      `json:"createdAt"`
}

type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Link      string `json:"link,omitempty"`
	Timestamp string `json:"timestamp"`
	Author    string `json:"author"`
}

type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Assignee      string     `json:"assignee"`
	Priority      Priority   `json:"priority"`
	Status        TaskStatus `json:"status"`
	DueDate       string     `json:"dueDate"`
	CompletedDate string     `json:"completedDate,omitempty"`
	Order         int        `json:"order"`
	CreatedAt     string     `json:"createdAt"`
	Comments      []Comment  `json:"comments"`
}

type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Source    string     `json:"source"`
	Course    string     `json:"course"`
	Status    LeadStatus `json:"status"`
	CreatedAt string     `json:"createdAt"`
}

type ContentItem struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Type      ContentType   `json:"type"`
	Status    ContentStatus `json:"status"`
	Comments  []Comment     `json:"comments"`
	Link      string        `json:"link,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

type TeamMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

// Student.Advisor is matched against Agent.Name, not Agent.ID. The join is a
// soft reference requiring an exact case-sensitive match; renaming an agent
// does not cascade.
type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Number  string `json:"number"`
	Email   string `json:"email"`
	Paid    int64  `json:"paid"`
	Due     int64  `json:"due"`
	Access  bool   `json:"access"`
	Advisor string `json:"advisor"`
}

type BatchAdCost struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type BatchProject struct {
	ID          string        `json:"id"`
	CourseName  string        `json:"courseName"`
	LandingPage string        `json:"landingPage"`
	StartDate   string        `json:"startDate"`
	Students    []Student     `json:"students"`
	AdCosts     []BatchAdCost `json:"adCosts"`
	CreatedAt   string        `json:"createdAt"`
}

// SnapshotData holds a point-in-time copy of every collection plus the monthly
// target. Nested slices are always deep copies, never aliases of live data.
type SnapshotData struct {
	Tasks         []Task         `json:"tasks"`
	Leads         []Lead         `json:"leads"`
	Sales         []Sale         `json:"sales"`
	Expenses      []Expense      `json:"expenses"`
	Content       []ContentItem  `json:"content"`
	Agents        []Agent        `json:"agents"`
	TeamMembers   []TeamMember   `json:"teamMembers"`
	MonthlyTarget int64          `json:"monthlyTarget"`
	BatchProjects []BatchProject `json:"batchProjects"`
}

type Version struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Timestamp string       `json:"timestamp"`
	Data      SnapshotData `json:"data"`
}
