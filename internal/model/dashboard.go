package model

type StatusCounts struct {
	All       int `json:"all"`
	Waiting   int `json:"waiting"`
	Serving   int `json:"serving"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Add counts one token into the matching bucket.
func (c *StatusCounts) Add(status TokenStatus) {
	c.All++
	switch status {
	case TokenStatusWaiting:
		c.Waiting++
	case TokenStatusServing:
		c.Serving++
	case TokenStatusCompleted:
		c.Completed++
	case TokenStatusCancelled:
		c.Cancelled++
	}
}

type Overview struct {
	Date          string       `json:"date"`
	TotalTokens   int          `json:"total_tokens"`
	ActiveDoctors int          `json:"active_doctors"`
	Waiting       int          `json:"waiting"`
	Completed     int          `json:"completed"`
	StatusCounts  StatusCounts `json:"status_counts"`
	PendingLeave  int          `json:"pending_leave"`
	RecentTokens  []*Token     `json:"recent_tokens"`
}

type DepartmentSummary struct {
	Department   string `json:"department"`
	Doctors      int    `json:"doctors"`
	Active       int    `json:"active"`
	AvailablePct int    `json:"available_pct"`
}

type QueueStats struct {
	NowServing string `json:"now_serving,omitempty"`
	Waiting    int    `json:"waiting"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}

type QueueSnapshot struct {
	DoctorID  string     `json:"doctor_id"`
	Date      string     `json:"date"`
	Serving   *Token     `json:"serving,omitempty"`
	Waiting   []*Token   `json:"waiting"`
	Completed []*Token   `json:"completed"`
	Cancelled []*Token   `json:"cancelled"`
	Stats     QueueStats `json:"stats"`
}
