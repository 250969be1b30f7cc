package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-order-service/internal/service"
	"go-gin-order-service/internal/transport/http/ez"
)

type CartHandler struct {
	carts    *service.CartLedger
	identity *service.IdentityResolver
}

func NewCartHandler(carts *service.CartLedger, identity *service.IdentityResolver) *CartHandler {
	return &CartHandler{carts: carts, identity: identity}
}

type cartURI struct {
	CartID string `uri:"cartId" binding:"required"`
}

type addItemIn struct {
	ProductID string `form:"productId" binding:"required"`
	Quantity  int    `form:"quantity"  binding:"required,gt=0"`
}

type updateItemIn struct {
	CartID    string `uri:"cartId"    binding:"required"`
	ProductID string `uri:"itemId"    binding:"required"`
	Quantity  int    `form:"quantity" binding:"required,gt=0"`
}

type itemURI struct {
	CartID    string `uri:"cartId" binding:"required"`
	ProductID string `uri:"itemId" binding:"required"`
}

type totalOut struct {
	CartID     string `json:"cartId"`
	TotalCents int64  `json:"totalPriceCents"`
}

func (h *CartHandler) MountAPI(r ez.Routes) {
	carts := r.Authed.Group("/carts")
	items := r.Authed.Group("/cartItems")

	ez.RegisterAction(carts, ez.Action[cartURI, CartDTO]{
		Method: http.MethodGet,
		Path:   "/:cartId",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *cartURI) (CartDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return CartDTO{}, err
			}
			cart, err := h.carts.Get(c.Request.Context(), u, in.CartID)
			if err != nil {
				return CartDTO{}, err
			}
			return toCartDTO(cart), nil
		},
	})

	ez.RegisterAction(carts, ez.Action[cartURI, messageOut]{
		Method: http.MethodDelete,
		Path:   "/:cartId",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *cartURI) (messageOut, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return messageOut{}, err
			}
			if err := h.carts.Clear(c.Request.Context(), u, in.CartID); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "cart cleared"}, nil
		},
	})

	ez.RegisterAction(carts, ez.Action[cartURI, totalOut]{
		Method: http.MethodGet,
		Path:   "/:cartId/total-price",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *cartURI) (totalOut, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return totalOut{}, err
			}
			total, err := h.carts.TotalPrice(c.Request.Context(), u, in.CartID)
			if err != nil {
				return totalOut{}, err
			}
			return totalOut{CartID: in.CartID, TotalCents: total}, nil
		},
	})

	ez.RegisterAction(items, ez.Action[addItemIn, CartDTO]{
		Method: http.MethodPost,
		Path:   "/item/add",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *addItemIn) (CartDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return CartDTO{}, err
			}
			cart, err := h.carts.AddLine(c.Request.Context(), u, in.ProductID, in.Quantity)
			if err != nil {
				return CartDTO{}, err
			}
			return toCartDTO(cart), nil
		},
	})

	// itemId 即商品 ID
	ez.RegisterAction(items, ez.Action[updateItemIn, CartDTO]{
		Method: http.MethodPut,
		Path:   "/cart/:cartId/item/:itemId",
		Binder: ez.BindURIQuery,
		Handler: func(c *gin.Context, in *updateItemIn) (CartDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return CartDTO{}, err
			}
			cart, err := h.carts.UpdateLine(c.Request.Context(), u, in.CartID, in.ProductID, in.Quantity)
			if err != nil {
				return CartDTO{}, err
			}
			return toCartDTO(cart), nil
		},
	})

	ez.RegisterAction(items, ez.Action[itemURI, CartDTO]{
		Method: http.MethodDelete,
		Path:   "/cart/:cartId/item/:itemId",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *itemURI) (CartDTO, error) {
			u, err := caller(c, h.identity)
			if err != nil {
				return CartDTO{}, err
			}
			cart, err := h.carts.RemoveLine(c.Request.Context(), u, in.CartID, in.ProductID)
			if err != nil {
				return CartDTO{}, err
			}
			return toCartDTO(cart), nil
		},
	})
}
