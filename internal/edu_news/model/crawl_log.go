package model

import "time"

// CrawlSourceAll marks a log entry covering every configured feed.
const CrawlSourceAll = "all"

type CrawlLog struct {
	ID        string    `bson:"_id" json:"id"`
	Source    string    `bson:"source" json:"source"`
	CrawledAt time.Time `bson:"crawledAt" json:"crawledAt"`
	Success   bool      `bson:"success" json:"success"`
	NewsCount int       `bson:"newsCount" json:"newsCount"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
}

// CrawlSummary is what one aggregation run reports to its caller.
type CrawlSummary struct {
	Success   bool     `json:"success"`
	TotalNews int      `json:"totalNews"`
	NewNews   int      `json:"newNews"`
	Errors    []string `json:"errors"`
}
