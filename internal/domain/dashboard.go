package domain

import "time"

// StatusCount pairs a status with how many tickets hold it.
type StatusCount struct {
	Status TicketStatus `json:"status"`
	Count  int64        `json:"count"`
}

// PriorityCount pairs a priority with how many tickets hold it.
type PriorityCount struct {
	Priority TicketPriority `json:"priority"`
	Count    int64          `json:"count"`
}

// DailyCount is the number of tickets created on one day.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// TeamCount is the number of tickets assigned to one team.
type TeamCount struct {
	Team  *string `json:"team"`
	Count int64   `json:"count"`
}

// RecentTicket is the trimmed shape used in dashboard listings.
type RecentTicket struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Status    TicketStatus   `json:"status"`
	Priority  TicketPriority `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
}

// DashboardOverview aggregates organization ticket statistics over a
// trailing window. The struct is JSON-cached, so every field is tagged.
type DashboardOverview struct {
	TotalTickets    int64           `json:"total_tickets"`
	OpenTickets     int64           `json:"open_tickets"`
	ResolvedTickets int64           `json:"resolved_tickets"`
	Status          []StatusCount   `json:"status"`
	Priority        []PriorityCount `json:"priority"`
	Daily           []DailyCount    `json:"daily"`
	Teams           []TeamCount     `json:"teams"`
	Recent          []RecentTicket  `json:"recent"`
}
