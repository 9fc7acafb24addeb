package gormstore

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"civicsync/internal/domain"
)

// Store 与内存实现同一能力面的持久化后端。
// (user_id, issue_id) 的唯一性交给唯一索引，投票的查重/插入/计数
// 包在一个事务里。
type Store struct{ db *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&domain.User{}, &domain.Issue{}, &domain.Vote{})
}

func (s *Store) CreateUser(u *domain.User) error {
	u.Email = strings.ToLower(u.Email)
	if err := s.db.Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) FindUserByID(id string) (*domain.User, error) {
	var u domain.User
	err := s.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := s.db.First(&u, "lower(email) = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (s *Store) CountUsers() (int, error) {
	var n int64
	err := s.db.Model(&domain.User{}).Count(&n).Error
	return int(n), err
}

func (s *Store) CreateIssue(i *domain.Issue) error { return s.db.Create(i).Error }

func (s *Store) FindIssueByID(id string) (*domain.Issue, error) {
	var i domain.Issue
	err := s.db.First(&i, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &i, err
}

func (s *Store) UpdateIssue(i *domain.Issue) error { return s.db.Save(i).Error }

func (s *Store) DeleteIssue(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Issue{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("issue_id = ?", id).Delete(&domain.Vote{}).Error
	})
}

func (s *Store) Issues() ([]domain.Issue, error) {
	var out []domain.Issue
	err := s.db.Find(&out).Error
	return out, err
}

func (s *Store) IssuesByUser(userID string) ([]domain.Issue, error) {
	var out []domain.Issue
	err := s.db.Where("user_id = ?", userID).Find(&out).Error
	return out, err
}

func (s *Store) CreateVote(v *domain.Vote) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var issue domain.Issue
		if err := tx.First(&issue, "id = ?", v.IssueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Create(v).Error; err != nil {
			if isDupKey(err) {
				return domain.ErrDuplicate
			}
			return err
		}
		return tx.Model(&domain.Issue{}).Where("id = ?", v.IssueID).
			Updates(map[string]any{
				"vote_count": gorm.Expr("vote_count + 1"),
				"updated_at": time.Now(),
			}).Error
	})
}

func (s *Store) HasVoted(userID, issueID string) (bool, error) {
	var n int64
	err := s.db.Model(&domain.Vote{}).
		Where("user_id = ? AND issue_id = ?", userID, issueID).Count(&n).Error
	return n > 0, err
}

func (s *Store) VotedIssueIDs(userID string) (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&domain.Vote{}).Where("user_id = ?", userID).
		Pluck("issue_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *Store) CountVotes() (int, error) {
	var n int64
	err := s.db.Model(&domain.Vote{}).Count(&n).Error
	return int(n), err
}

// 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
