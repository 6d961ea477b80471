package model

// Snapshot is the dashboard aggregate derived from the event log.
// Every field is a pure function of the log contents at computation
// time; nothing is cached across computations.
type Snapshot struct {
	TotalEvents        int `json:"totalEvents"`
	TotalProfileViews  int `json:"totalProfileViews"`
	TotalLinkClicks    int `json:"totalLinkClicks"`
	TotalRegistrations int `json:"totalUserRegistrations"`
	TotalLinksAdded    int `json:"totalLinkAdditions"`

	UniqueViewers    int             `json:"uniqueViewers"`
	TopLinks         []LinkStats     `json:"topLinks"`         // Top 10 by clicks
	RecentActivity   []Event         `json:"recentActivity"`   // Last 20 events, newest first
	HourlyBreakdown  map[int]int     `json:"hourlyBreakdown"`  // Hour of day (0-23), last 24h
	DailyBreakdown   map[string]int  `json:"dailyBreakdown"`   // Date "YYYY-MM-DD", last 7 days
	MostActiveUsers  []UserActivity  `json:"mostActiveUsers"`  // Top 10 by total
	PopularLinkTypes []LinkTypeStats `json:"popularLinkTypes"` // Top 5 by clicks
	UserGrowth       []GrowthPoint   `json:"userGrowth"`

	AvgLinksPerUser string `json:"avgLinksPerUser"` // Formatted to 2 decimal places
	AvgViewsPerUser string `json:"avgViewsPerUser"`
}

// LinkStats counts clicks for one link of one profile.
type LinkStats struct {
	Username string `json:"username"`
	LinkKey  string `json:"linkKey"`
	Count    int    `json:"count"`
}

// UserActivity is the per-username rollup behind the most-active ranking.
type UserActivity struct {
	Username string `json:"username"`
	Views    int    `json:"views"`
	Clicks   int    `json:"clicks"`
	Links    int    `json:"links"`
	Total    int    `json:"total"` // Views + Clicks + Links
}

// LinkTypeStats counts clicks per lowercased link key across all profiles.
type LinkTypeStats struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// GrowthPoint is one step of the cumulative registration series.
type GrowthPoint struct {
	Date  string `json:"date"` // "YYYY-MM-DD"
	Count int    `json:"count"`
}
