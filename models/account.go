package models

import "fmt"

// Account ist ein beobachteter Account im Roster.
type Account struct {
	ID uint `json:"id" gorm:"primaryKey"`
	// Name ist der Anzeigename, der in screen_name gesucht wird.
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	UID  int64  `json:"uid" gorm:"not null"`
	// ChartID wählt die Kategorie der Einzelrangliste.
	ChartID  int `json:"chart_id" gorm:"not null"`
	Position int `json:"position" gorm:"index"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Account) TableName() string {
	return "accounts"
}

// ContainerID ergibt die cardlist-containerid der Einzelrangliste.
func (a Account) ContainerID() string {
	return fmt.Sprintf("231343_%d_%d", a.UID, a.ChartID)
}

// DefaultAccounts ist das initiale Roster.
func DefaultAccounts() []Account {
	return []Account{
		{Name: "莫寒", UID: 3053424305, ChartID: 6},
		{Name: "李艺彤", UID: 3700233717, ChartID: 5},
		{Name: "黄婷婷", UID: 3668822213, ChartID: 6},
		{Name: "冯薪朵", UID: 3675868752, ChartID: 6},
		{Name: "陆婷", UID: 3669120105, ChartID: 6},
		{Name: "赵粤", UID: 3668829440, ChartID: 6},
		{Name: "张语格", UID: 3050783091, ChartID: 5},
		{Name: "许佳琪", UID: 3050737061, ChartID: 6},
		{Name: "戴萌", UID: 3050709151, ChartID: 6},
		{Name: "孔肖吟", UID: 3058127927, ChartID: 6},
		{Name: "林思意", UID: 3675865547, ChartID: 6},
		{Name: "吴哲晗", UID: 3050731261, ChartID: 6},
		{Name: "李宇琪", UID: 3050792913, ChartID: 6},
	}
}
