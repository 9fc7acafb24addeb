package analytics

import (
	"fmt"
	"sort"
	"time"

	"civicsync/internal/domain"
)

// IssueBrief mostVotedByCategory 的精简条目
type IssueBrief struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	VoteCount int    `json:"voteCount"`
	Status    string `json:"status"`
}

// RecentIssue recentIssues 的精简条目
type RecentIssue struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Summary struct {
	CategoryCount       map[string]int          `json:"categoryCount"`
	StatusCount         map[string]int          `json:"statusCount"`
	DailySubmissions    []DailyCount            `json:"dailySubmissions"`
	MostVotedByCategory map[string][]IssueBrief `json:"mostVotedByCategory"`
	RecentIssues        []RecentIssue           `json:"recentIssues"`
	TotalIssues         int                     `json:"totalIssues"`
	TotalVotes          int                     `json:"totalVotes"`
	TotalUsers          int                     `json:"totalUsers"`
	// 字符串序列化，空集合时固定 "0"，避免除零
	AverageVotesPerIssue string `json:"averageVotesPerIssue"`
}

type Aggregator struct{ store domain.Store }

func New(s domain.Store) *Aggregator { return &Aggregator{store: s} }

// Summarize 每次调用对全量集合重算，不做缓存（缓存由上层按需包装）
func (a *Aggregator) Summarize(now time.Time) (*Summary, error) {
	issues, err := a.store.Issues()
	if err != nil {
		return nil, err
	}
	totalVotes, err := a.store.CountVotes()
	if err != nil {
		return nil, err
	}
	totalUsers, err := a.store.CountUsers()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		CategoryCount:       make(map[string]int, len(domain.Categories)),
		StatusCount:         make(map[string]int, len(domain.Statuses)),
		MostVotedByCategory: make(map[string][]IssueBrief, len(domain.Categories)),
		TotalIssues:         len(issues),
		TotalVotes:          totalVotes,
		TotalUsers:          totalUsers,
		AverageVotesPerIssue: "0",
	}
	if len(issues) > 0 {
		sum.AverageVotesPerIssue = fmt.Sprintf("%.2f", float64(totalVotes)/float64(len(issues)))
	}

	// 零值填充：封闭集合里的每个取值都要出现
	for _, c := range domain.Categories {
		sum.CategoryCount[c] = 0
	}
	for _, st := range domain.Statuses {
		sum.StatusCount[st] = 0
	}
	for _, i := range issues {
		sum.CategoryCount[i.Category]++
		sum.StatusCount[i.Status]++
	}

	sum.DailySubmissions = dailySubmissions(issues, now)

	for _, c := range domain.Categories {
		var in []domain.Issue
		for _, i := range issues {
			if i.Category == c {
				in = append(in, i)
			}
		}
		sort.SliceStable(in, func(a, b int) bool { return in[a].VoteCount > in[b].VoteCount })
		if len(in) > 5 {
			in = in[:5]
		}
		briefs := make([]IssueBrief, 0, len(in))
		for _, i := range in {
			briefs = append(briefs, IssueBrief{ID: i.ID, Title: i.Title, VoteCount: i.VoteCount, Status: i.Status})
		}
		sum.MostVotedByCategory[c] = briefs
	}

	recent := make([]domain.Issue, len(issues))
	copy(recent, issues)
	sort.SliceStable(recent, func(a, b int) bool { return recent[a].CreatedAt.After(recent[b].CreatedAt) })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	sum.RecentIssues = make([]RecentIssue, 0, len(recent))
	for _, i := range recent {
		sum.RecentIssues = append(sum.RecentIssues, RecentIssue{
			ID: i.ID, Title: i.Title, Category: i.Category, CreatedAt: i.CreatedAt,
		})
	}
	return sum, nil
}

// dailySubmissions 恒定 7 项：6 天前到今天（本地日历日）
func dailySubmissions(issues []domain.Issue, now time.Time) []DailyCount {
	out := make([]DailyCount, 0, 7)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for off := -6; off <= 0; off++ {
		start := today.AddDate(0, 0, off)
		end := start.AddDate(0, 0, 1)
		n := 0
		for _, i := range issues {
			if !i.CreatedAt.Before(start) && i.CreatedAt.Before(end) {
				n++
			}
		}
		out = append(out, DailyCount{Date: start.Format("2006-01-02"), Count: n})
	}
	return out
}
