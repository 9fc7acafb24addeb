package domain

import "time"

// 封闭枚举：分类 / 状态。过滤接口另接受哨兵值 "all"。
const (
	CategoryRoad        = "Road"
	CategoryWater       = "Water"
	CategorySanitation  = "Sanitation"
	CategoryElectricity = "Electricity"
	CategoryOther       = "Other"

	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// Categories 固定顺序，analytics 的零值填充按此遍历
var Categories = []string{
	CategoryRoad, CategoryWater, CategorySanitation, CategoryElectricity, CategoryOther,
}

var Statuses = []string{StatusPending, StatusInProgress, StatusResolved}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Issue struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36" json:"userId"`
	Title       string    `gorm:"size:191" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:32;index" json:"category"`
	Location    string    `gorm:"size:191" json:"location"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Status      string    `gorm:"size:32;index" json:"status"`
	ImageURL    *string   `gorm:"size:191" json:"imageUrl"`
	VoteCount   int       `json:"voteCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Issue) TableName() string { return "issues" }

// DecoratedIssue 在 Issue 之上附加观察者相关字段与作者展示字段
type DecoratedIssue struct {
	Issue
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	HasVoted  bool   `json:"hasVoted"`
	IsOwner   bool   `json:"isOwner"`
}
