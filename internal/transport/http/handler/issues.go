package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"civicsync/internal/domain"
	"civicsync/internal/query"
	"civicsync/internal/transport/http/ez"
	mdw "civicsync/internal/transport/http/middleware"
	"civicsync/internal/upload"
	"civicsync/pkg/utils"
)

type Issues struct {
	store  domain.Store
	engine *query.Engine
	saver  *upload.Saver
}

func NewIssues(s domain.Store, e *query.Engine, sv *upload.Saver) *Issues {
	return &Issues{store: s, engine: e, saver: sv}
}

func (h *Issues) Priority() int { return 20 }

type issueOut struct {
	Message string                `json:"message"`
	Issue   domain.DecoratedIssue `json:"issue"`
}

type rawIssueOut struct {
	Message string       `json:"message"`
	Issue   domain.Issue `json:"issue"`
}

func (h *Issues) Mount(_, authed *gin.RouterGroup) {
	e := ez.New(authed)

	type createIn struct {
		Title       string `form:"title"`
		Description string `form:"description"`
		Category    string `form:"category"`
		Location    string `form:"location"`
		Latitude    string `form:"latitude"`
		Longitude   string `form:"longitude"`
	}
	ez.Register[createIn, issueOut](e, h.store, ez.Action[createIn, issueOut]{
		Method: http.MethodPost,
		Path:   "/issues",
		Binder: ez.BindForm,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, s domain.Store, in *createIn) (issueOut, error) {
			if in.Title == "" || in.Description == "" || in.Category == "" || in.Location == "" {
				return issueOut{}, ez.BadRequest("Title, description, category, and location are required")
			}
			if !domain.ValidCategory(in.Category) {
				return issueOut{}, ez.BadRequest("Invalid category")
			}

			imageURL, err := h.saveImage(c)
			if err != nil {
				return issueOut{}, err
			}

			now := time.Now()
			issue := domain.Issue{
				ID:          utils.NewID(),
				UserID:      c.GetString(mdw.KeyUserID),
				Title:       strings.TrimSpace(in.Title),
				Description: strings.TrimSpace(in.Description),
				Category:    in.Category,
				Location:    strings.TrimSpace(in.Location),
				Latitude:    parseCoord(in.Latitude),
				Longitude:   parseCoord(in.Longitude),
				Status:      domain.StatusPending,
				ImageURL:    imageURL,
				VoteCount:   0,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.CreateIssue(&issue); err != nil {
				return issueOut{}, ez.Internal("Server error while creating issue", err)
			}
			return issueOut{
				Message: "Issue created successfully",
				Issue:   h.engine.Decorate(issue.UserID, issue, false),
			}, nil
		},
	})

	ez.Register[struct{}, query.Page](e, h.store, ez.Action[struct{}, query.Page]{
		Method: http.MethodGet,
		Path:   "/issues",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (query.Page, error) {
			// page/limit 数值宽松解析：非法值落默认，不报 400
			page, err := h.engine.List(c.GetString(mdw.KeyUserID), query.Options{
				Page:     atoiDefault(c.Query("page"), query.DefaultPage),
				Limit:    atoiDefault(c.Query("limit"), query.DefaultLimit),
				Category: c.Query("category"),
				Status:   c.Query("status"),
				Search:   c.Query("search"),
				SortBy:   c.DefaultQuery("sortBy", query.SortNewest),
			})
			if err != nil {
				return query.Page{}, ez.Internal("Server error while fetching issues", err)
			}
			return *page, nil
		},
	})

	type myOut struct {
		Issues     []domain.DecoratedIssue `json:"issues"`
		TotalCount int                     `json:"totalCount"`
	}
	ez.Register[struct{}, myOut](e, h.store, ez.Action[struct{}, myOut]{
		Method: http.MethodGet,
		Path:   "/issues/my",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (myOut, error) {
			issues, err := h.engine.My(c.GetString(mdw.KeyUserID))
			if err != nil {
				return myOut{}, ez.Internal("Server error while fetching your issues", err)
			}
			if issues == nil {
				issues = []domain.DecoratedIssue{}
			}
			return myOut{Issues: issues, TotalCount: len(issues)}, nil
		},
	})

	type oneOut struct {
		Issue domain.DecoratedIssue `json:"issue"`
	}
	ez.Register[struct{}, oneOut](e, h.store, ez.Action[struct{}, oneOut]{
		Method: http.MethodGet,
		Path:   "/issues/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (oneOut, error) {
			d, err := h.engine.Get(c.GetString(mdw.KeyUserID), c.Param("id"))
			if err != nil {
				return oneOut{}, ez.Internal("Server error while fetching issue", err)
			}
			if d == nil {
				return oneOut{}, ez.NotFound("Issue not found")
			}
			return oneOut{Issue: *d}, nil
		},
	})

	ez.Register[struct{}, rawIssueOut](e, h.store, ez.Action[struct{}, rawIssueOut]{
		Method: http.MethodPut,
		Path:   "/issues/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (rawIssueOut, error) {
			issue, err := s.FindIssueByID(c.Param("id"))
			if err != nil {
				return rawIssueOut{}, ez.Internal("Server error while updating issue", err)
			}
			if issue == nil {
				return rawIssueOut{}, ez.NotFound("Issue not found")
			}
			// 先验归属，再验状态：只有 Pending 的自有 issue 可改
			if issue.UserID != c.GetString(mdw.KeyUserID) {
				return rawIssueOut{}, ez.Forbidden("You can only edit your own issues")
			}
			if issue.Status != domain.StatusPending {
				return rawIssueOut{}, ez.Forbidden("You can only edit pending issues")
			}

			if v := c.PostForm("title"); v != "" {
				issue.Title = strings.TrimSpace(v)
			}
			if v := c.PostForm("description"); v != "" {
				issue.Description = strings.TrimSpace(v)
			}
			// 封闭集合外的 category 静默忽略，不报错
			if v := c.PostForm("category"); v != "" && domain.ValidCategory(v) {
				issue.Category = v
			}
			if v := c.PostForm("location"); v != "" {
				issue.Location = strings.TrimSpace(v)
			}
			if v, ok := c.GetPostForm("latitude"); ok {
				issue.Latitude = parseCoord(v)
			}
			if v, ok := c.GetPostForm("longitude"); ok {
				issue.Longitude = parseCoord(v)
			}

			if _, err := c.FormFile("image"); err == nil {
				newURL, err := h.saveImage(c)
				if err != nil {
					return rawIssueOut{}, err
				}
				// 新图顶替旧图，旧文件删掉
				if issue.ImageURL != nil {
					_ = h.saver.Remove(*issue.ImageURL)
				}
				issue.ImageURL = newURL
			}

			issue.UpdatedAt = time.Now()
			if err := s.UpdateIssue(issue); err != nil {
				return rawIssueOut{}, ez.Internal("Server error while updating issue", err)
			}
			return rawIssueOut{Message: "Issue updated successfully", Issue: *issue}, nil
		},
	})

	type msgOut struct {
		Message string `json:"message"`
	}
	ez.Register[struct{}, msgOut](e, h.store, ez.Action[struct{}, msgOut]{
		Method: http.MethodDelete,
		Path:   "/issues/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (msgOut, error) {
			issue, err := s.FindIssueByID(c.Param("id"))
			if err != nil {
				return msgOut{}, ez.Internal("Server error while deleting issue", err)
			}
			if issue == nil {
				return msgOut{}, ez.NotFound("Issue not found")
			}
			if issue.UserID != c.GetString(mdw.KeyUserID) {
				return msgOut{}, ez.Forbidden("You can only delete your own issues")
			}
			if issue.Status != domain.StatusPending {
				return msgOut{}, ez.Forbidden("You can only delete pending issues")
			}

			if issue.ImageURL != nil {
				_ = h.saver.Remove(*issue.ImageURL)
			}
			// 连同引用它的投票一起删
			if err := s.DeleteIssue(issue.ID); err != nil {
				return msgOut{}, ez.Internal("Server error while deleting issue", err)
			}
			return msgOut{Message: "Issue deleted successfully"}, nil
		},
	})

	type voteOut struct {
		Message   string `json:"message"`
		VoteCount int    `json:"voteCount"`
	}
	ez.Register[struct{}, voteOut](e, h.store, ez.Action[struct{}, voteOut]{
		Method: http.MethodPost,
		Path:   "/issues/:id/vote",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (voteOut, error) {
			vote := domain.Vote{
				ID:        utils.NewID(),
				UserID:    c.GetString(mdw.KeyUserID),
				IssueID:   c.Param("id"),
				CreatedAt: time.Now(),
			}
			// insert-if-absent：查重、插入、计数在 store 内一步完成
			switch err := s.CreateVote(&vote); err {
			case nil:
			case domain.ErrNotFound:
				return voteOut{}, ez.NotFound("Issue not found")
			case domain.ErrDuplicate:
				return voteOut{}, ez.BadRequest("You have already voted on this issue")
			default:
				return voteOut{}, ez.Internal("Server error while recording vote", err)
			}
			issue, err := s.FindIssueByID(vote.IssueID)
			if err != nil || issue == nil {
				return voteOut{}, ez.Internal("Server error while recording vote", err)
			}
			return voteOut{Message: "Vote recorded successfully", VoteCount: issue.VoteCount}, nil
		},
	})

	type statusIn struct {
		Status string `json:"status"`
	}
	ez.Register[statusIn, rawIssueOut](e, h.store, ez.Action[statusIn, rawIssueOut]{
		Method: http.MethodPatch,
		Path:   "/issues/:id/status",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, s domain.Store, in *statusIn) (rawIssueOut, error) {
			if !domain.ValidStatus(in.Status) {
				return rawIssueOut{}, ez.BadRequest("Invalid status. Must be one of: Pending, In Progress, Resolved")
			}
			issue, err := s.FindIssueByID(c.Param("id"))
			if err != nil {
				return rawIssueOut{}, ez.Internal("Server error while updating status", err)
			}
			if issue == nil {
				return rawIssueOut{}, ez.NotFound("Issue not found")
			}
			// 状态变更不做归属校验：任何已登录用户都能改
			issue.Status = in.Status
			issue.UpdatedAt = time.Now()
			if err := s.UpdateIssue(issue); err != nil {
				return rawIssueOut{}, ez.Internal("Server error while updating status", err)
			}
			return rawIssueOut{Message: "Status updated successfully", Issue: *issue}, nil
		},
	})
}

// saveImage 表单里的可选图片；没有就返回 nil，类型/大小不合格返回 400
func (h *Issues) saveImage(c *gin.Context) (*string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	url, err := h.saver.Save(fh)
	if err != nil {
		switch err {
		case upload.ErrTooLarge, upload.ErrWrongFormat:
			return nil, ez.BadRequest(err.Error())
		default:
			return nil, ez.Internal("Failed to store uploaded image", err)
		}
	}
	return &url, nil
}

func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
