package monitor

import "time"

type Status struct {
	PostgreSQL  bool      `json:"postgresql"`
	Redis       bool      `json:"redis"`
	ReportStore bool      `json:"report_store"`
	ReportCount int       `json:"report_count"`
	LastCheck   time.Time `json:"last_check"`
}
