package hierarchy

// OrgChartNode is one rendered node of the reporting forest. It is derived
// on every read and never persisted.
type OrgChartNode struct {
	ID                string          `json:"id"`
	FullName          string          `json:"full_name"`
	Email             string          `json:"email"`
	Role              string          `json:"role"`
	Department        string          `json:"department,omitempty"`
	EmploymentStatus  string          `json:"employment_status"`
	TotalSubordinates int             `json:"total_subordinates"`
	DirectReports     []*OrgChartNode `json:"direct_reports"`

	lastName string
}

// UnassignedEmployee is a root with no direct reports: not part of any
// visible reporting chain, listed flat next to the forest.
type UnassignedEmployee struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	Department       string `json:"department,omitempty"`
	EmploymentStatus string `json:"employment_status"`
}

type OrgStats struct {
	TotalEmployees int            `json:"total_employees"`
	ManagerCount   int            `json:"manager_count"`
	RootCount      int            `json:"root_count"`
	ByDepartment   map[string]int `json:"by_department"`
	ByRole         map[string]int `json:"by_role"`
}

type OrgChartResponse struct {
	Forest     []*OrgChartNode      `json:"forest"`
	Unassigned []UnassignedEmployee `json:"unassigned"`
	Stats      OrgStats             `json:"stats"`
}
