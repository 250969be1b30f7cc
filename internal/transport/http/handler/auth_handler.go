package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/service"
	"go-gin-order-service/internal/transport/http/ez"
	mdw "go-gin-order-service/internal/transport/http/middleware"
)

type AuthHandler struct {
	auth     *service.AuthService
	identity *service.IdentityResolver
}

func NewAuthHandler(auth *service.AuthService, identity *service.IdentityResolver) *AuthHandler {
	return &AuthHandler{auth: auth, identity: identity}
}

func (h *AuthHandler) Priority() int { return 10 }

type signupIn struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

type verifyIn struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6,numeric"`
}

type resendIn struct {
	Email string `json:"email" binding:"required,email"`
}

type messageOut struct {
	Message string `json:"message"`
}

func (h *AuthHandler) MountAPI(r ez.Routes) {
	ez.RegisterAction(r.Public, ez.Action[signupIn, UserDTO]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *signupIn) (UserDTO, error) {
			u, err := h.auth.Signup(c.Request.Context(), in.Username, in.Email, in.Password)
			if err != nil {
				return UserDTO{}, err
			}
			return toUserDTO(u), nil
		},
	})

	ez.RegisterAction(r.Public, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			s, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUserDTO(s.User)}, nil
		},
	})

	ez.RegisterAction(r.Public, ez.Action[verifyIn, messageOut]{
		Method: http.MethodPost,
		Path:   "/auth/verify",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *verifyIn) (messageOut, error) {
			if err := h.auth.Verify(c.Request.Context(), in.Email, in.Code); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "account verified"}, nil
		},
	})

	ez.RegisterAction(r.Public, ez.Action[resendIn, messageOut]{
		Method: http.MethodPost,
		Path:   "/auth/resend",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *resendIn) (messageOut, error) {
			if err := h.auth.Resend(c.Request.Context(), in.Email); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "verification code sent"}, nil
		},
	})

	// 公共路由：token 由请求头直接读取，吊销后再次使用会被 AuthGate 拦截
	ez.RegisterAction(r.Public, ez.Action[struct{}, messageOut]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (messageOut, error) {
			tok, ok := mdw.BearerToken(c.GetHeader("Authorization"))
			if !ok {
				return messageOut{}, domain.Unauthorized("missing token")
			}
			if err := h.auth.Logout(c.Request.Context(), tok); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "logged out"}, nil
		},
	})

	ez.RegisterAction(r.Authed, ez.Action[struct{}, UserDTO]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (UserDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return UserDTO{}, err
			}
			return toUserDTO(u), nil
		},
	})
}
