package query

import (
	"sort"
	"strings"

	"civicsync/internal/domain"
)

const (
	SortNewest    = "newest"
	SortMostVoted = "most-voted"

	// All 过滤哨兵：不按该维度过滤
	All = "all"

	DefaultPage  = 1
	DefaultLimit = 10
)

// Options 列表查询的全部可识别参数。零值字段落到默认值。
type Options struct {
	Page     int
	Limit    int
	Category string
	Status   string
	Search   string
	SortBy   string
}

// Page 一页装饰后的 issue 加分页元数据
type Page struct {
	Issues      []domain.DecoratedIssue `json:"issues"`
	TotalCount  int                     `json:"totalCount"`
	CurrentPage int                     `json:"currentPage"`
	TotalPages  int                     `json:"totalPages"`
	HasMore     bool                    `json:"hasMore"`
}

type Engine struct{ store domain.Store }

func New(s domain.Store) *Engine { return &Engine{store: s} }

// List 过滤 → 搜索 → 排序 → 装饰 → 分页，前四步作用于完整匹配集，
// 分页只决定返回哪一页，不改变匹配结果。
// category/status 传入枚举外的值不是错误：精确比较下自然匹配不到任何行。
func (e *Engine) List(viewerID string, opt Options) (*Page, error) {
	if opt.Page <= 0 {
		opt.Page = DefaultPage
	}
	if opt.Limit <= 0 {
		opt.Limit = DefaultLimit
	}

	issues, err := e.store.Issues()
	if err != nil {
		return nil, err
	}

	filtered := issues[:0:0]
	search := strings.ToLower(opt.Search)
	for _, i := range issues {
		if opt.Category != "" && opt.Category != All && i.Category != opt.Category {
			continue
		}
		if opt.Status != "" && opt.Status != All && i.Status != opt.Status {
			continue
		}
		// 只搜标题，不搜描述
		if search != "" && !strings.Contains(strings.ToLower(i.Title), search) {
			continue
		}
		filtered = append(filtered, i)
	}

	sortIssues(filtered, opt.SortBy)

	decorated, err := e.decorateAll(viewerID, filtered)
	if err != nil {
		return nil, err
	}

	total := len(decorated)
	start := (opt.Page - 1) * opt.Limit
	end := start + opt.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Page{
		Issues:      decorated[start:end],
		TotalCount:  total,
		CurrentPage: opt.Page,
		TotalPages:  (total + opt.Limit - 1) / opt.Limit,
		HasMore:     start+opt.Limit < total,
	}, nil
}

// My 观察者自己的 issue，最新在前
func (e *Engine) My(viewerID string) ([]domain.DecoratedIssue, error) {
	issues, err := e.store.IssuesByUser(viewerID)
	if err != nil {
		return nil, err
	}
	sortIssues(issues, SortNewest)
	return e.decorateAll(viewerID, issues)
}

// Get 单条装饰结果；不存在返回 (nil, nil)
func (e *Engine) Get(viewerID, issueID string) (*domain.DecoratedIssue, error) {
	issue, err := e.store.FindIssueByID(issueID)
	if err != nil || issue == nil {
		return nil, err
	}
	hasVoted, err := e.store.HasVoted(viewerID, issueID)
	if err != nil {
		return nil, err
	}
	d := e.decorate(viewerID, *issue, hasVoted)
	return &d, nil
}

// Decorate 给刚创建的 issue 补装饰字段（创建者视角：未投票、是 owner）
func (e *Engine) Decorate(viewerID string, issue domain.Issue, hasVoted bool) domain.DecoratedIssue {
	return e.decorate(viewerID, issue, hasVoted)
}

func sortIssues(issues []domain.Issue, sortBy string) {
	// 稳定排序保证平票/同刻记录的顺序可复现；
	// 未识别的 sortBy 不排序，保持上一阶段产出的顺序
	switch sortBy {
	case SortMostVoted:
		sort.SliceStable(issues, func(a, b int) bool {
			return issues[a].VoteCount > issues[b].VoteCount
		})
	case SortNewest, "":
		sort.SliceStable(issues, func(a, b int) bool {
			return issues[a].CreatedAt.After(issues[b].CreatedAt)
		})
	}
}

func (e *Engine) decorateAll(viewerID string, issues []domain.Issue) ([]domain.DecoratedIssue, error) {
	voted, err := e.store.VotedIssueIDs(viewerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DecoratedIssue, 0, len(issues))
	for _, i := range issues {
		out = append(out, e.decorate(viewerID, i, voted[i.ID]))
	}
	return out, nil
}

func (e *Engine) decorate(viewerID string, issue domain.Issue, hasVoted bool) domain.DecoratedIssue {
	d := domain.DecoratedIssue{
		Issue:    issue,
		HasVoted: hasVoted,
		IsOwner:  issue.UserID == viewerID,
		// 作者记录缺失（孤儿 issue）时退回占位展示，不让请求失败
		UserName:  "Unknown User",
		UserEmail: "unknown@example.com",
	}
	if author, err := e.store.FindUserByID(issue.UserID); err == nil && author != nil {
		d.UserName = author.Name
		d.UserEmail = author.Email
	}
	return d
}
