package handler

import (
	"time"

	"go-gin-order-service/internal/domain"
)

// 价格一律以分为单位输出

type UserDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Enabled   bool      `json:"enabled"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserDTO{
		ID: u.ID, Username: u.Username, Email: u.Email,
		Enabled: u.Enabled, Roles: roles, CreatedAt: u.CreatedAt,
	}
}

type CartLineDTO struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalPriceCents"`
}

type CartDTO struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	TotalCents int64         `json:"totalPriceCents"`
	Items      []CartLineDTO `json:"items"`
}

func toCartDTO(c *domain.Cart) CartDTO {
	out := CartDTO{ID: c.ID, UserID: c.UserID, TotalCents: c.TotalCents, Items: make([]CartLineDTO, 0, len(c.Lines))}
	for _, l := range c.Lines {
		out.Items = append(out.Items, CartLineDTO{
			ProductID: l.ProductID, Quantity: l.Quantity,
			UnitPriceCents: l.UnitPriceCents, TotalCents: l.TotalCents,
		})
	}
	return out
}

type OrderLineDTO struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalPriceCents"`
}

type OrderDTO struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	OrderDate  time.Time      `json:"orderDate"`
	Status     string         `json:"status"`
	TotalCents int64          `json:"totalPriceCents"`
	Items      []OrderLineDTO `json:"items"`
}

func toOrderDTO(o *domain.Order) OrderDTO {
	out := OrderDTO{
		ID: o.ID, UserID: o.UserID, OrderDate: o.OrderDate, Status: string(o.Status),
		TotalCents: o.TotalCents, Items: make([]OrderLineDTO, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Items = append(out.Items, OrderLineDTO{
			ProductID: l.ProductID, Quantity: l.Quantity,
			UnitPriceCents: l.UnitPriceCents, TotalCents: l.TotalCents(),
		})
	}
	return out
}
