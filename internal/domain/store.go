package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Store 三个集合的能力面：增 / 查 / 改 / 删 / 扫描。
// 默认实现是进程内集合（store/memory），可换持久化实现（store/gormstore）
// 而不动 handler 层。
type Store interface {
	CreateUser(u *User) error // email 重复返回 ErrDuplicate（大小写不敏感）
	FindUserByID(id string) (*User, error)
	FindUserByEmail(email string) (*User, error)
	CountUsers() (int, error)

	CreateIssue(i *Issue) error
	FindIssueByID(id string) (*Issue, error)
	UpdateIssue(i *Issue) error
	DeleteIssue(id string) error // 级联删除其所有 Vote
	Issues() ([]Issue, error)    // 快照副本，调用方可随意排序/切片
	IssuesByUser(userID string) ([]Issue, error)

	// CreateVote 原子的 insert-if-absent：已存在返回 ErrDuplicate，
	// 成功时同步把对应 Issue 的 VoteCount +1 并刷新 UpdatedAt。
	CreateVote(v *Vote) error
	HasVoted(userID, issueID string) (bool, error)
	VotedIssueIDs(userID string) (map[string]bool, error)
	CountVotes() (int, error)
}
