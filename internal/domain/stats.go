package domain

// CategoryCount is one row of the issues-by-category aggregate.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// LocationCount is one row of the issues-by-location aggregate.
// LocationName is "Unknown location" for issues with no location reference.
type LocationCount struct {
	LocationName string `json:"location"`
	Count        int64  `json:"count"`
}

// DashboardStats is the role-scoped aggregate view backing the dashboard.
// Every field is computed over the caller's in-scope subset; an absent caller
// yields the zero value. TotalUsers and TotalLocations are populated for
// administrators only.
type DashboardStats struct {
	TotalIssues      int64           `json:"total_issues"`
	ReportedIssues   int64           `json:"reported_issues"`
	InProgressIssues int64           `json:"in_progress_issues"`
	ResolvedIssues   int64           `json:"resolved_issues"`
	TotalUsers       int64           `json:"total_users"`
	TotalLocations   int64           `json:"total_locations"`
	RecentIssues     []Issue         `json:"recent_issues"`
	IssuesByCategory []CategoryCount `json:"issues_by_category"`
	IssuesByLocation []LocationCount `json:"issues_by_location"`
}

// EmptyDashboardStats returns a zeroed stats value with non-nil slices, so
// unauthenticated dashboard requests serialize to empty arrays rather than null.
func EmptyDashboardStats() DashboardStats {
	return DashboardStats{
		RecentIssues:     []Issue{},
		IssuesByCategory: []CategoryCount{},
		IssuesByLocation: []LocationCount{},
	}
}
