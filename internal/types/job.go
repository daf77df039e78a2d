// Package types provides type definitions for structured data used throughout the job tracker.
package types

// CompanyType classifies the employer.
type CompanyType string

// Company type constants
const (
	CompanyInternet   CompanyType = "互联网"
	CompanyStateOwned CompanyType = "国企"
	CompanyForeign    CompanyType = "外企"
	CompanyFinance    CompanyType = "金融"
	CompanyOther      CompanyType = "其他"
)

// CompanyTypes lists every supported company type in display order.
var CompanyTypes = []CompanyType{CompanyInternet, CompanyStateOwned, CompanyForeign, CompanyFinance, CompanyOther}

// Valid reports whether t is a known company type.
func (t CompanyType) Valid() bool {
	for _, known := range CompanyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// JobStatus is the application progress of a tracked job.
type JobStatus string

// Job status constants
const (
	StatusNew        JobStatus = "new"
	StatusInProgress JobStatus = "inProgress"
	StatusOffer      JobStatus = "offer"
	StatusRejected   JobStatus = "rejected"
)

var jobStatusLabels = map[JobStatus]string{
	StatusNew:        "新收藏",
	StatusInProgress: "进行中",
	StatusOffer:      "已offer",
	StatusRejected:   "已挂",
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	_, ok := jobStatusLabels[s]
	return ok
}

// Label returns the display label for the status.
func (s JobStatus) Label() string {
	if label, ok := jobStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ReminderEvent is the stage a reminder counts down to.
type ReminderEvent string

// Reminder event constants
const (
	EventToApply     ReminderEvent = "toApply"
	EventWrittenTest ReminderEvent = "writtenTest"
	EventInterview   ReminderEvent = "interview"
	EventToOffer     ReminderEvent = "toOffer"
)

var reminderEventLabels = map[ReminderEvent]string{
	EventToApply:     "待投递",
	EventWrittenTest: "待笔试",
	EventInterview:   "待面试",
	EventToOffer:     "待接受",
}

// Valid reports whether e is a known reminder event.
func (e ReminderEvent) Valid() bool {
	_, ok := reminderEventLabels[e]
	return ok
}

// Label returns the display label for the event.
func (e ReminderEvent) Label() string {
	if label, ok := reminderEventLabels[e]; ok {
		return label
	}
	return string(e)
}

// Company identifies the employer of a job.
type Company struct {
	Name string      `json:"name"`
	Logo string      `json:"logo,omitempty"`
	Type CompanyType `json:"type"`
}

// Position holds the role details of a job.
type Position struct {
	Title      string    `json:"title"`
	Salary     string    `json:"salary"`
	Location   string    `json:"location"`
	Deadline   string    `json:"deadline,omitempty"` // ISO-8601
	Status     JobStatus `json:"status"`
	Education  string    `json:"education"`
	Experience string    `json:"experience"`
}

// Suggestions are free-text preparation tips produced during extraction.
type Suggestions struct {
	Resume      string `json:"resume"`
	Interview   string `json:"interview"`
	Negotiation string `json:"negotiation"`
}

// Analysis is the structured breakdown of a job posting.
type Analysis struct {
	Responsibilities []string    `json:"responsibilities"`
	Requirements     []string    `json:"requirements"`
	Suggestions      Suggestions `json:"suggestions"`
}

// JobRecord is one tracked job posting.
type JobRecord struct {
	ID            string        `json:"id"`
	FolderID      string        `json:"folderId"`
	Company       Company       `json:"company"`
	Position      Position      `json:"position"`
	AIAnalysis    Analysis      `json:"aiAnalysis"`
	CreatedAt     int64         `json:"createdAt"` // Unix milliseconds
	ApplyLink     string        `json:"applyLink,omitempty"`
	ScheduleLink  string        `json:"scheduleLink,omitempty"`
	HasReminder   bool          `json:"hasReminder,omitempty"`
	ReminderEvent ReminderEvent `json:"reminderEvent,omitempty"`
	IsArchived    bool          `json:"isArchived,omitempty"`
}

// Clone returns a deep copy of the record.
func (j *JobRecord) Clone() *JobRecord {
	if j == nil {
		return nil
	}
	c := *j
	c.AIAnalysis.Responsibilities = append([]string(nil), j.AIAnalysis.Responsibilities...)
	c.AIAnalysis.Requirements = append([]string(nil), j.AIAnalysis.Requirements...)
	if j.AIAnalysis.Responsibilities != nil && c.AIAnalysis.Responsibilities == nil {
		c.AIAnalysis.Responsibilities = []string{}
	}
	if j.AIAnalysis.Requirements != nil && c.AIAnalysis.Requirements == nil {
		c.AIAnalysis.Requirements = []string{}
	}
	return &c
}

// InSchedule reports whether the record shows up in schedule views.
func (j *JobRecord) InSchedule() bool {
	return j.HasReminder && !j.IsArchived && j.Position.Deadline != ""
}

// JobPatch is a shallow update of a JobRecord. Nil fields are left untouched;
// nested objects are replaced as a whole.
type JobPatch struct {
	FolderID      *string        `json:"folderId,omitempty"`
	Company       *Company       `json:"company,omitempty"`
	Position      *Position      `json:"position,omitempty"`
	AIAnalysis    *Analysis      `json:"aiAnalysis,omitempty"`
	ApplyLink     *string        `json:"applyLink,omitempty"`
	ScheduleLink  *string        `json:"scheduleLink,omitempty"`
	HasReminder   *bool          `json:"hasReminder,omitempty"`
	ReminderEvent *ReminderEvent `json:"reminderEvent,omitempty"`
	IsArchived    *bool          `json:"isArchived,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p JobPatch) IsEmpty() bool {
	return p.FolderID == nil && p.Company == nil && p.Position == nil && p.AIAnalysis == nil &&
		p.ApplyLink == nil && p.ScheduleLink == nil && p.HasReminder == nil &&
		p.ReminderEvent == nil && p.IsArchived == nil
}

// Apply merges the patch into j.
func (p JobPatch) Apply(j *JobRecord) {
	if p.FolderID != nil {
		j.FolderID = *p.FolderID
	}
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Position != nil {
		j.Position = *p.Position
	}
	if p.AIAnalysis != nil {
		j.AIAnalysis = *p.AIAnalysis
	}
	if p.ApplyLink != nil {
		j.ApplyLink = *p.ApplyLink
	}
	if p.ScheduleLink != nil {
		j.ScheduleLink = *p.ScheduleLink
	}
	if p.HasReminder != nil {
		j.HasReminder = *p.HasReminder
	}
	if p.ReminderEvent != nil {
		j.ReminderEvent = *p.ReminderEvent
	}
	if p.IsArchived != nil {
		j.IsArchived = *p.IsArchived
	}
}

// Reminder is the countdown state of a job.
type Reminder struct {
	HasReminder bool          `json:"hasReminder"`
	Event       ReminderEvent `json:"reminderEvent,omitempty"`
	Deadline    string        `json:"deadline,omitempty"`
}
