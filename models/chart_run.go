package models

import "time"

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ChartRun protokolliert einen Lauf der täglichen Rangliste.
type ChartRun struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChartDate string `json:"chart_date" gorm:"index;not null"` // YYYYMMDD
	Status    string `json:"status" gorm:"index"`
	Error     string `json:"error,omitempty" gorm:"type:text"`

	Accounts     int    `json:"accounts"`
	GroupEntries int    `json:"group_entries"`
	FocusRank    int    `json:"focus_rank"`
	ReportLink   string `json:"report_link,omitempty"`
	Notified     bool   `json:"notified"`
}

// TableName gibt explizit den Tabellennamen an.
func (ChartRun) TableName() string {
	return "chart_runs"
}
