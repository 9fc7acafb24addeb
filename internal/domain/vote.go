package domain

import "time"

// Vote 一条 (user, issue) 背书，每对至多一条
type Vote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_vote_user_issue" json:"userId"`
	IssueID   string    `gorm:"size:36;uniqueIndex:idx_vote_user_issue" json:"issueId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Vote) TableName() string { return "votes" }
