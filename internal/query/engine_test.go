package query

import (
	"fmt"
	"testing"
	"time"

	"civicsync/internal/domain"
	"civicsync/internal/store/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	_ = s.CreateUser(&domain.User{ID: "u1", Email: "u1@example.com", Name: "Alice"})
	_ = s.CreateUser(&domain.User{ID: "u2", Email: "u2@example.com", Name: "Bob"})

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local)
	add := func(id, userID, title, category, status string, votes int, age time.Duration) {
		t.Helper()
		err := s.CreateIssue(&domain.Issue{
			ID: id, UserID: userID, Title: title, Description: "desc",
			Category: category, Location: "somewhere", Status: status,
			VoteCount: votes, CreatedAt: base.Add(age), UpdatedAt: base.Add(age),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	add("i1", "u1", "Pothole on Main Street", domain.CategoryRoad, domain.StatusPending, 5, 0)
	add("i2", "u2", "Water leakage near park", domain.CategoryWater, domain.StatusPending, 9, time.Hour)
	add("i3", "u1", "Water supply disrupted", domain.CategoryWater, domain.StatusResolved, 2, 2*time.Hour)
	add("i4", "u2", "Broken street light", domain.CategoryElectricity, domain.StatusPending, 9, 3*time.Hour)
	add("i5", "orphan", "Garbage pileup", domain.CategorySanitation, domain.StatusInProgress, 1, 4*time.Hour)

	_ = s.CreateVote(&domain.Vote{ID: "v1", UserID: "u1", IssueID: "i2"})
	return s
}

func ids(issues []domain.DecoratedIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.ID)
	}
	return out
}

func TestListFilterByCategory(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{Category: domain.CategoryWater})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("totalCount = %d, want 2", page.TotalCount)
	}
	for _, i := range page.Issues {
		if i.Category != domain.CategoryWater {
			t.Fatalf("non-Water issue %s in Water filter", i.ID)
		}
	}
}

func TestListCombinedFiltersAreAND(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{
		Category: domain.CategoryWater,
		Status:   domain.StatusPending,
		Search:   "WATER",
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 1 || page.Issues[0].ID != "i2" {
		t.Fatalf("got %v, want [i2]", ids(page.Issues))
	}
}

func TestListSearchTitleOnly(t *testing.T) {
	e := New(seedStore(t))
	// "desc" 出现在所有 description 里，但不搜描述
	page, err := e.List("u1", Options{Search: "desc"})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 0 {
		t.Fatalf("search matched descriptions: %v", ids(page.Issues))
	}
}

func TestListUnknownCategoryMatchesNothing(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{Category: "Potholes"})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 0 {
		t.Fatalf("unknown category matched %d issues", page.TotalCount)
	}
}

func TestListSentinelAll(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{Category: "all", Status: "all"})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 5 {
		t.Fatalf("totalCount = %d, want 5", page.TotalCount)
	}
}

func TestListSortNewest(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{SortBy: SortNewest})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"i5", "i4", "i3", "i2", "i1"}
	got := ids(page.Issues)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestListSortMostVotedStable(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{SortBy: SortMostVoted})
	if err != nil {
		t.Fatal(err)
	}
	// i2 和 i4 同为 9 票：稳定排序保持快照中的先后（i2 在前）
	want := []string{"i2", "i4", "i1", "i3", "i5"}
	got := ids(page.Issues)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestListPagination(t *testing.T) {
	s := memory.New()
	_ = s.CreateUser(&domain.User{ID: "u1", Email: "u1@example.com", Name: "Alice"})
	base := time.Now()
	for i := 0; i < 15; i++ {
		_ = s.CreateIssue(&domain.Issue{
			ID: fmt.Sprintf("i%02d", i), UserID: "u1",
			Title: "x", Category: domain.CategoryRoad, Status: domain.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	e := New(s)

	page1, err := e.List("u1", Options{Page: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page1.Issues) != 10 || !page1.HasMore || page1.TotalPages != 2 || page1.TotalCount != 15 {
		t.Fatalf("page1 = %d items, hasMore=%v, totalPages=%d, totalCount=%d",
			len(page1.Issues), page1.HasMore, page1.TotalPages, page1.TotalCount)
	}

	page2, err := e.List("u1", Options{Page: 2, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page2.Issues) != 5 || page2.HasMore || page2.TotalPages != 2 {
		t.Fatalf("page2 = %d items, hasMore=%v, totalPages=%d",
			len(page2.Issues), page2.HasMore, page2.TotalPages)
	}

	// 越界页：空列表，不 panic
	page9, err := e.List("u1", Options{Page: 9, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page9.Issues) != 0 || page9.HasMore {
		t.Fatalf("page9 = %d items, hasMore=%v", len(page9.Issues), page9.HasMore)
	}
}

func TestListDefaults(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{Page: -3, Limit: 0})
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != DefaultPage {
		t.Fatalf("currentPage = %d, want %d", page.CurrentPage, DefaultPage)
	}
}

func TestDecoration(t *testing.T) {
	e := New(seedStore(t))
	page, err := e.List("u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	byID := map[string]domain.DecoratedIssue{}
	for _, i := range page.Issues {
		byID[i.ID] = i
	}

	if !byID["i2"].HasVoted {
		t.Fatal("u1 voted on i2 but hasVoted=false")
	}
	if byID["i1"].HasVoted {
		t.Fatal("u1 never voted on i1 but hasVoted=true")
	}
	if !byID["i1"].IsOwner || byID["i2"].IsOwner {
		t.Fatal("isOwner decoration wrong")
	}
	if byID["i1"].UserName != "Alice" || byID["i2"].UserEmail != "u2@example.com" {
		t.Fatal("author fields not resolved")
	}
	// 作者记录缺失的孤儿 issue 不能让请求失败
	if byID["i5"].UserName != "Unknown User" || byID["i5"].UserEmail != "unknown@example.com" {
		t.Fatalf("orphan fallback = %q / %q", byID["i5"].UserName, byID["i5"].UserEmail)
	}
}

func TestMyNewestFirstAndOwned(t *testing.T) {
	e := New(seedStore(t))
	mine, err := e.My("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	if mine[0].ID != "i3" || mine[1].ID != "i1" {
		t.Fatalf("order = %v, want [i3 i1]", ids(mine))
	}
	for _, i := range mine {
		if !i.IsOwner {
			t.Fatalf("%s not marked isOwner", i.ID)
		}
	}
}

func TestGet(t *testing.T) {
	e := New(seedStore(t))
	d, err := e.Get("u1", "i2")
	if err != nil {
		t.Fatal(err)
	}
	if d == nil || !d.HasVoted || d.IsOwner {
		t.Fatalf("decorated get wrong: %+v", d)
	}

	missing, err := e.Get("u1", "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing issue: got %v, %v", missing, err)
	}
}
