package models

// DashboardStats accumulates task counts across the caller's active groups.
type DashboardStats struct {
	TotalGroups     int `json:"totalGroups"`
	TotalTasks      int `json:"totalTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
	MyTasks         int `json:"myTasks"`
	CompletionRate  int `json:"completionRate"`
}

// OverviewUser is the profile slice surfaced on the dashboard.
type OverviewUser struct {
	UID      string `json:"uid"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Overview is the composed dashboard response. Every section degrades
// independently to its zero value when the backing fetch fails.
type Overview struct {
	User          *OverviewUser  `json:"user"`
	Groups        []Group        `json:"groups"`
	Stats         DashboardStats `json:"stats"`
	Notifications []Notification `json:"notifications"`
	Activities    []ActivityLog  `json:"activities"`
}
