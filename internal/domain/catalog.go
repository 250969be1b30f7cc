package domain

import (
	"strings"
	"time"
)

// Product 只作为库存与价格来源，目录维护不在本服务
type Product struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:191;not null" json:"name"`
	PriceCents int64     `gorm:"not null" json:"priceCents"`
	Stock      int       `gorm:"not null;default:0" json:"stock"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

type Cart struct {
	ID         string     `gorm:"primaryKey;size:36"`
	UserID     string     `gorm:"uniqueIndex;size:36;not null"`
	TotalCents int64      `gorm:"not null;default:0"`
	Lines      []CartLine `gorm:"foreignKey:CartID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Cart) TableName() string { return "carts" }

// Recalculate sets TotalCents to the sum of the line totals.
func (c *Cart) Recalculate() {
	var sum int64
	for _, l := range c.Lines {
		sum += l.TotalCents
	}
	c.TotalCents = sum
}

// LinesByProduct indexes the lines by product id.
func (c *Cart) LinesByProduct() map[string]*CartLine {
	m := make(map[string]*CartLine, len(c.Lines))
	for i := range c.Lines {
		m[c.Lines[i].ProductID] = &c.Lines[i]
	}
	return m
}

type CartLine struct {
	ID             uint   `gorm:"primaryKey"`
	CartID         string `gorm:"size:36;not null;uniqueIndex:idx_cart_product"`
	ProductID      string `gorm:"size:36;not null;uniqueIndex:idx_cart_product"`
	Quantity       int    `gorm:"not null"`
	UnitPriceCents int64  `gorm:"not null"`
	TotalCents     int64  `gorm:"not null"`
}

func (CartLine) TableName() string { return "cart_lines" }

func (l *CartLine) SetQuantity(qty int, unitPrice int64) {
	l.Quantity = qty
	l.UnitPriceCents = unitPrice
	l.TotalCents = int64(qty) * unitPrice
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

// ParseOrderStatus maps s (any case) onto a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	want := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range orderStatuses {
		if st == want {
			return st, nil
		}
	}
	return "", InvalidArgument("unknown order status: " + s)
}

type Order struct {
	ID         string      `gorm:"primaryKey;size:36"`
	UserID     string      `gorm:"index;size:36;not null"`
	OrderDate  time.Time   `gorm:"not null"`
	Status     OrderStatus `gorm:"size:16;not null"`
	TotalCents int64       `gorm:"not null"`
	Lines      []OrderLine `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderLine 的单价在下单时冻结，之后商品改价不影响
type OrderLine struct {
	ID             uint   `gorm:"primaryKey"`
	OrderID        string `gorm:"index;size:36;not null"`
	ProductID      string `gorm:"size:36;not null"`
	Quantity       int    `gorm:"not null"`
	UnitPriceCents int64  `gorm:"not null"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (l OrderLine) TotalCents() int64 { return int64(l.Quantity) * l.UnitPriceCents }
