package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/service"
	"go-gin-order-service/internal/transport/http/ez"
)

// UserHandler 管理端用户接口：挂在 /api/v1 的 admin 分组和 /admin/v1 上
type UserHandler struct {
	users *service.UserAdmin
}

func NewUserHandler(users *service.UserAdmin) *UserHandler {
	return &UserHandler{users: users}
}

type listUsersIn struct {
	Offset int    `form:"offset,default=0"  binding:"gte=0"`
	Limit  int    `form:"limit,default=20"  binding:"gte=0,max=100"`
	Q      string `form:"q"` // 按 username/email 模糊搜
}

type listUsersOut struct {
	Total int64     `json:"total"`
	Items []UserDTO `json:"items"`
}

func (h *UserHandler) MountAPI(r ez.Routes) { h.mount(r.Admin) }

func (h *UserHandler) MountAdmin(e ez.EZ) { h.mount(e) }

func (h *UserHandler) mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[listUsersIn, listUsersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersIn) (listUsersOut, error) {
			us, total, err := h.users.List(c.Request.Context(), in.Offset, in.Limit, in.Q)
			if err != nil {
				return listUsersOut{}, err
			}
			out := listUsersOut{Total: total, Items: make([]UserDTO, 0, len(us))}
			for i := range us {
				out.Items = append(out.Items, toUserDTO(&us[i]))
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, UserDTO]{
		Method: http.MethodPost,
		Path:   "/users/:id/enable",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (UserDTO, error) {
			u, err := h.users.Enable(c.Request.Context(), in.ID)
			if err != nil {
				return UserDTO{}, err
			}
			return toUserDTO(u), nil
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, UserDTO]{
		Method: http.MethodPost,
		Path:   "/users/:id/disable",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (UserDTO, error) {
			u, err := h.users.Disable(c.Request.Context(), in.ID)
			if err != nil {
				return UserDTO{}, err
			}
			return toUserDTO(u), nil
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, messageOut]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (messageOut, error) {
			if err := h.users.Delete(c.Request.Context(), in.ID); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "user deleted"}, nil
		},
	})
}
