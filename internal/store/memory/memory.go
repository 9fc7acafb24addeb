package memory

import (
	"strings"
	"sync"
	"time"

	"civicsync/internal/domain"
)

// Store 进程生命周期的内存集合，单把读写锁保护。
// 所有扫描返回快照副本，写操作（含 vote 的查重+插入+计数）在一次
// 写锁内完成，(user, issue) 唯一性在并发下是排它的。
type Store struct {
	mu     sync.RWMutex
	users  []domain.User
	issues []domain.Issue
	votes  []domain.Vote
}

func New() *Store { return &Store{} }

func (s *Store) CreateUser(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *Store) FindUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) CountUsers() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *Store) CreateIssue(i *domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, *i)
	return nil
}

func (s *Store) FindIssueByID(id string) (*domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.issues {
		if s.issues[i].ID == id {
			out := s.issues[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateIssue(in *domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == in.ID {
			s.issues[i] = *in
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) DeleteIssue(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.issues {
		if s.issues[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.issues = append(s.issues[:idx], s.issues[idx+1:]...)
	// 级联删除引用该 issue 的所有投票
	kept := s.votes[:0]
	for _, v := range s.votes {
		if v.IssueID != id {
			kept = append(kept, v)
		}
	}
	s.votes = kept
	return nil
}

func (s *Store) Issues() ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Issue, len(s.issues))
	copy(out, s.issues)
	return out, nil
}

func (s *Store) IssuesByUser(userID string) ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Issue
	for _, i := range s.issues {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *Store) CreateVote(v *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.votes {
		if s.votes[i].UserID == v.UserID && s.votes[i].IssueID == v.IssueID {
			return domain.ErrDuplicate
		}
	}
	idx := -1
	for i := range s.issues {
		if s.issues[i].ID == v.IssueID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.votes = append(s.votes, *v)
	s.issues[idx].VoteCount++
	s.issues[idx].UpdatedAt = time.Now()
	return nil
}

func (s *Store) HasVoted(userID, issueID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.votes {
		if s.votes[i].UserID == userID && s.votes[i].IssueID == issueID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) VotedIssueIDs(userID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool)
	for _, v := range s.votes {
		if v.UserID == userID {
			out[v.IssueID] = true
		}
	}
	return out, nil
}

func (s *Store) CountVotes() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes), nil
}
