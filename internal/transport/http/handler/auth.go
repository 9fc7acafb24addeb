package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"civicsync/internal/core/auth"
	"civicsync/internal/domain"
	"civicsync/internal/transport/http/ez"
	mdw "civicsync/internal/transport/http/middleware"
	"civicsync/pkg/utils"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Auth struct {
	store domain.Store
	jwter *auth.JWTer
}

func NewAuth(s domain.Store, j *auth.JWTer) *Auth { return &Auth{store: s, jwter: j} }

func (h *Auth) Priority() int { return 10 }

type authOut struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

type meOut struct {
	User domain.PublicUser `json:"user"`
}

func (h *Auth) Mount(public, authed *gin.RouterGroup) {
	ezPub := ez.New(public)
	ezAuth := ez.New(authed)

	type registerIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	ez.Register[registerIn, authOut](ezPub, h.store, ez.Action[registerIn, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, s domain.Store, in *registerIn) (authOut, error) {
			if in.Email == "" || in.Password == "" || in.Name == "" {
				return authOut{}, ez.BadRequest("All fields (email, password, name) are required")
			}
			if !emailRe.MatchString(in.Email) {
				return authOut{}, ez.BadRequest("Invalid email format")
			}
			if len(in.Password) < 6 {
				return authOut{}, ez.BadRequest("Password must be at least 6 characters long")
			}

			u := domain.User{
				ID:           utils.NewID(),
				Email:        strings.ToLower(in.Email),
				Name:         in.Name,
				PasswordHash: utils.HashPassword(in.Password),
				CreatedAt:    time.Now(),
			}
			if err := s.CreateUser(&u); err != nil {
				if err == domain.ErrDuplicate {
					return authOut{}, ez.BadRequest("User with this email already exists")
				}
				return authOut{}, ez.Internal("Server error during registration", err)
			}

			tok, err := h.jwter.Issue(u.ID, u.Email)
			if err != nil {
				return authOut{}, ez.Internal("Server error during registration", err)
			}
			return authOut{Message: "User registered successfully", Token: tok, User: u.Public()}, nil
		},
	})

	type loginIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	ez.Register[loginIn, authOut](ezPub, h.store, ez.Action[loginIn, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, s domain.Store, in *loginIn) (authOut, error) {
			if in.Email == "" || in.Password == "" {
				return authOut{}, ez.BadRequest("Email and password are required")
			}
			u, err := s.FindUserByEmail(in.Email)
			if err != nil {
				return authOut{}, ez.Internal("Server error during login", err)
			}
			// 账号不存在和密码错误给同一句话，不泄露哪个错了
			if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
				return authOut{}, ez.BadRequest("Invalid email or password")
			}
			tok, err := h.jwter.Issue(u.ID, u.Email)
			if err != nil {
				return authOut{}, ez.Internal("Server error during login", err)
			}
			return authOut{Message: "Login successful", Token: tok, User: u.Public()}, nil
		},
	})

	ez.Register[struct{}, meOut](ezAuth, h.store, ez.Action[struct{}, meOut]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (meOut, error) {
			u, err := s.FindUserByID(c.GetString(mdw.KeyUserID))
			if err != nil {
				return meOut{}, ez.Internal("Server error", err)
			}
			if u == nil {
				return meOut{}, ez.NotFound("User not found")
			}
			return meOut{User: u.Public()}, nil
		},
	})
}
