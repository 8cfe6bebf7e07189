package remote

// ErrorResponse is the backend's error payload shape.
type ErrorResponse struct {
	Message string `json:"message"`
}

// wireReminder is the reminder shape on the wire. SetAt is an RFC 3339
// timestamp string.
type wireReminder struct {
	RemindInMinutes int    `json:"remindInMinutes"`
	Repeat          string `json:"repeat"`
	Sound           bool   `json:"sound"`
	SetAt           string `json:"setAt"`
}

// wireTask is the task shape returned by GET /api/tasks.
type wireTask struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Status      string        `json:"status"`
	CompanyID   string        `json:"companyId"`
	CompanyName string        `json:"companyName"`
	AssignedTo  []string      `json:"assignedTo"`
	Priority    string        `json:"priority"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Reminder    *wireReminder `json:"reminder,omitempty"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// wireCompany is the company shape returned by GET /api/companies.
type wireCompany struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ContactEmail         string `json:"contactEmail"`
	LinkedInSubscription bool   `json:"linkedInSubscription"`
	CreatedAt            string `json:"createdAt"`
}

// workspaceInfo is returned by GET /api/workspace and used for connection
// validation.
type workspaceInfo struct {
	Name string `json:"name"`
}

// taskListResponse wraps the task collection endpoint.
type taskListResponse struct {
	Tasks []wireTask `json:"tasks"`
}

// companyListResponse wraps the company collection endpoint.
type companyListResponse struct {
	Companies []wireCompany `json:"companies"`
}
