package memory

import (
	"time"

	"civicsync/internal/domain"
	"civicsync/pkg/utils"
)

func f64(v float64) *float64 { return &v }

// Seed 写入固定示例数据：两个用户、四条覆盖全部状态的 issue、四票。
// 第四条 issue 的时间是当前时刻，保证冷启动后 7 日直方图非空。
// 示例账号：john@example.com / jane@example.com，密码均为 password123。
func (s *Store) Seed() {
	now := time.Now()
	day := func(v string) time.Time {
		t, _ := time.ParseInLocation("2006-01-02", v, time.Local)
		return t
	}
	pw := utils.HashPassword("password123")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = []domain.User{
		{ID: "1", Email: "john@example.com", Name: "John Doe", PasswordHash: pw, CreatedAt: day("2024-01-01")},
		{ID: "2", Email: "jane@example.com", Name: "Jane Smith", PasswordHash: pw, CreatedAt: day("2024-01-02")},
	}
	s.issues = []domain.Issue{
		{
			ID: "1", UserID: "1",
			Title:       "Huge pothole on Main Street",
			Description: "There is a dangerous pothole on Main Street near the intersection with 5th Avenue. It's about 2 feet wide and causing damage to vehicles.",
			Category:    domain.CategoryRoad,
			Location:    "Main Street & 5th Avenue, Sector 15",
			Latitude:    f64(30.7333), Longitude: f64(76.7794),
			Status:    domain.StatusInProgress,
			VoteCount: 15,
			CreatedAt: day("2024-01-10"), UpdatedAt: day("2024-01-15"),
		},
		{
			ID: "2", UserID: "2",
			Title:       "Street light not working",
			Description: "The street light outside house #45 has been broken for 2 weeks. The area is very dark at night and poses a safety risk.",
			Category:    domain.CategoryElectricity,
			Location:    "House #45, Block C, Sector 22",
			Latitude:    f64(30.7283), Longitude: f64(76.7744),
			Status:    domain.StatusPending,
			VoteCount: 8,
			CreatedAt: day("2024-01-12"), UpdatedAt: day("2024-01-12"),
		},
		{
			ID: "3", UserID: "1",
			Title:       "Water leakage from main pipeline",
			Description: "Major water leakage from the main pipeline causing waterlogging and water wastage. Immediate attention required.",
			Category:    domain.CategoryWater,
			Location:    "Near Park, Sector 18",
			Latitude:    f64(30.7383), Longitude: f64(76.7844),
			Status:    domain.StatusResolved,
			VoteCount: 25,
			CreatedAt: day("2024-01-05"), UpdatedAt: day("2024-01-20"),
		},
		{
			ID: "4", UserID: "2",
			Title:       "Garbage not collected for a week",
			Description: "The garbage collection truck has not visited our area for over a week. The garbage bins are overflowing and creating unhygienic conditions.",
			Category:    domain.CategorySanitation,
			Location:    "Block A, Sector 19",
			Latitude:    f64(30.7433), Longitude: f64(76.7894),
			Status:    domain.StatusPending,
			VoteCount: 20,
			CreatedAt: now, UpdatedAt: now,
		},
	}
	s.votes = []domain.Vote{
		{ID: "1", UserID: "1", IssueID: "2", CreatedAt: day("2024-01-13")},
		{ID: "2", UserID: "1", IssueID: "4", CreatedAt: day("2024-01-14")},
		{ID: "3", UserID: "2", IssueID: "1", CreatedAt: day("2024-01-11")},
		{ID: "4", UserID: "2", IssueID: "3", CreatedAt: day("2024-01-06")},
	}
}
