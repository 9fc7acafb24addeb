package handler

import (
	"net/http"
	"testing"
)

func TestAnalyticsSummary(t *testing.T) {
	r, _, _ := newTestServer(t)
	tok := registerUser(t, r, "an@example.com", "An")

	// 未登录拿不到
	w := doJSON(t, r, http.MethodGet, "/api/analytics", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d, want 401", w.Code)
	}

	id := createIssue(t, r, tok, "analytics target")
	voter := registerUser(t, r, "an2@example.com", "An2")
	w = doJSON(t, r, http.MethodPost, "/api/issues/"+id+"/vote", voter, nil)
	if w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/analytics", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		CategoryCount    map[string]int `json:"categoryCount"`
		StatusCount      map[string]int `json:"statusCount"`
		DailySubmissions []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"dailySubmissions"`
		TotalIssues          int    `json:"totalIssues"`
		TotalVotes           int    `json:"totalVotes"`
		TotalUsers           int    `json:"totalUsers"`
		AverageVotesPerIssue string `json:"averageVotesPerIssue"`
	}
	decode(t, w, &out)

	if out.TotalIssues != 1 || out.TotalVotes != 1 || out.TotalUsers != 2 {
		t.Fatalf("totals = %d/%d/%d", out.TotalIssues, out.TotalVotes, out.TotalUsers)
	}
	if out.AverageVotesPerIssue != "1.00" {
		t.Fatalf("average = %q", out.AverageVotesPerIssue)
	}
	if out.CategoryCount["Road"] != 1 || out.CategoryCount["Water"] != 0 {
		t.Fatalf("categoryCount = %v", out.CategoryCount)
	}
	if out.StatusCount["Pending"] != 1 {
		t.Fatalf("statusCount = %v", out.StatusCount)
	}
	if len(out.DailySubmissions) != 7 {
		t.Fatalf("dailySubmissions = %d entries", len(out.DailySubmissions))
	}
	if out.DailySubmissions[6].Count != 1 {
		t.Fatalf("today count = %d", out.DailySubmissions[6].Count)
	}
}
