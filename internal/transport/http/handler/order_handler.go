package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/service"
	"go-gin-order-service/internal/transport/http/ez"
)

type OrderHandler struct {
	orders   *service.OrderWorkflow
	identity *service.IdentityResolver
}

func NewOrderHandler(orders *service.OrderWorkflow, identity *service.IdentityResolver) *OrderHandler {
	return &OrderHandler{orders: orders, identity: identity}
}

type placeOrderIn struct {
	UserID string `form:"userId" binding:"required"`
}

// gin 要求同一位置的路径参数同名，订单 ID 与用户 ID 共用 :id
type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type statusIn struct {
	ID     string `uri:"id"      binding:"required"`
	Status string `form:"status" binding:"required"`
}

func (h *OrderHandler) MountAPI(r ez.Routes) {
	orders := r.Authed.Group("/orders")

	ez.RegisterAction(orders, ez.Action[placeOrderIn, OrderDTO]{
		Method: http.MethodPost,
		Path:   "/order",
		Binder: ez.BindQuery,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *placeOrderIn) (OrderDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return OrderDTO{}, err
			}
			o, err := h.orders.PlaceOrder(c.Request.Context(), u, in.UserID)
			if err != nil {
				return OrderDTO{}, err
			}
			return toOrderDTO(o), nil
		},
	})

	ez.RegisterAction(orders, ez.Action[idURI, OrderDTO]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (OrderDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return OrderDTO{}, err
			}
			o, err := h.orders.GetOrder(c.Request.Context(), u, in.ID)
			if err != nil {
				return OrderDTO{}, err
			}
			return toOrderDTO(o), nil
		},
	})

	ez.RegisterAction(orders, ez.Action[idURI, []OrderDTO]{
		Method: http.MethodGet,
		Path:   "/:id/by-user",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) ([]OrderDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return nil, err
			}
			list, err := h.orders.ListUserOrders(c.Request.Context(), u, in.ID)
			if err != nil {
				return nil, err
			}
			out := make([]OrderDTO, 0, len(list))
			for i := range list {
				out = append(out, toOrderDTO(&list[i]))
			}
			return out, nil
		},
	})

	ez.RegisterAction(orders, ez.Action[statusIn, OrderDTO]{
		Method: http.MethodPut,
		Path:   "/:id/status",
		Binder: ez.BindURIQuery,
		Handler: func(c *gin.Context, in *statusIn) (OrderDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return OrderDTO{}, err
			}
			o, err := h.orders.UpdateStatus(c.Request.Context(), u, in.ID, in.Status)
			if err != nil {
				return OrderDTO{}, err
			}
			return toOrderDTO(o), nil
		},
	})

	ez.RegisterAction(orders, ez.Action[idURI, messageOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (messageOut, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return messageOut{}, err
			}
			if err := h.orders.DeleteOrder(c.Request.Context(), u, in.ID); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "order deleted"}, nil
		},
	})
}
