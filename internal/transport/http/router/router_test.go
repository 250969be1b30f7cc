package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-gin-order-service/internal/app"
	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/testutil"
	"go-gin-order-service/internal/transport/http/router"
	"go-gin-order-service/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type server struct {
	t     *testing.T
	db    *gorm.DB
	app   *app.App
	api   http.Handler
	admin http.Handler
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedRoles(t, db)
	a := app.New(app.Deps{
		DB:     db,
		Tokens: &auth.TokenService{Secret: []byte("e2e-secret"), Issuer: "e2e", TTL: time.Hour},
		Hasher: utils.BcryptHasher{Cost: bcrypt.MinCost},
	})
	return &server{t: t, db: db, app: a, api: router.NewAPIEngine(a.RouterDeps()), admin: router.NewAdminEngine(a.RouterDeps())}
}

func (s *server) call(h http.Handler, method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), "%s %s: %s", method, path, w.Body.String())
	return w.Code, env
}

func (s *server) token(userID string) string {
	s.t.Helper()
	tok, _, err := s.app.Tokens.Issue(userID)
	require.NoError(s.t, err)
	return tok
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type userView struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

type cartView struct {
	ID         string `json:"id"`
	TotalCents int64  `json:"totalPriceCents"`
	Items      []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

type orderView struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Status     string `json:"status"`
	TotalCents int64  `json:"totalPriceCents"`
}

func TestCheckoutJourney(t *testing.T) {
	s := newServer(t)
	testutil.CreateProduct(t, s.db, "p1", 250, 5)

	code, env := s.call(s.api, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice", "email": "Alice@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, env.Msg)
	alice := decode[userView](t, env)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, code)

	var stored domain.User
	require.NoError(t, s.db.First(&stored, "id = ?", alice.ID).Error)
	require.NotNil(t, stored.VerificationCode)
	code, _ = s.call(s.api, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": "alice@example.com", "code": *stored.VerificationCode,
	})
	require.Equal(t, http.StatusOK, code)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code, env.Msg)
	tok := decode[struct {
		Token string `json:"token"`
	}](t, env).Token

	code, env = s.call(s.api, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{domain.RoleUser}, decode[userView](t, env).Roles)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/cartItems/item/add?productId=p1&quantity=2", tok, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	cart := decode[cartView](t, env)
	assert.EqualValues(t, 500, cart.TotalCents)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/cartItems/item/add?productId=p1&quantity=9", tok, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.call(s.api, http.MethodGet, "/api/v1/carts/"+cart.ID+"/total-price", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"cartId":"`+cart.ID+`","totalPriceCents":500}`, string(env.Data))

	code, env = s.call(s.api, http.MethodPost, "/api/v1/orders/order?userId="+alice.ID, tok, nil)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	order := decode[orderView](t, env)
	assert.Equal(t, "PENDING", order.Status)
	assert.EqualValues(t, 500, order.TotalCents)
	assert.Equal(t, 3, testutil.Stock(t, s.db, "p1"))

	code, _ = s.call(s.api, http.MethodGet, "/api/v1/carts/"+cart.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.call(s.api, http.MethodGet, "/api/v1/orders/"+alice.ID+"/by-user", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]orderView](t, env), 1)

	// 其他用户不能看
	testutil.CreateUser(t, s.db, "bob", domain.RoleUser)
	code, _ = s.call(s.api, http.MethodGet, "/api/v1/orders/"+order.ID, s.token("bob"), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.call(s.api, http.MethodPut, "/api/v1/orders/"+order.ID+"/status?status=shipped", tok, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	assert.Equal(t, "SHIPPED", decode[orderView](t, env).Status)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)

	code, env = s.call(s.api, http.MethodGet, "/api/v1/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "token is blacklisted", env.Msg)
}

func TestAnonymousAndBadInput(t *testing.T) {
	s := newServer(t)

	code, env := s.call(s.api, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "authentication required", env.Msg)

	code, _ = s.call(s.api, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	details := decode[map[string]string](t, env)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "is required", details["username"])

	testutil.CreateUser(t, s.db, "carol", domain.RoleUser)
	code, _ = s.call(s.api, http.MethodPost, "/api/v1/cartItems/item/add?productId=p1&quantity=0", s.token("carol"), nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/cartItems/item/add?productId=missing&quantity=1", s.token("carol"), nil)
	assert.Equal(t, http.StatusNotFound, code, env.Msg)

	code, _ = s.call(s.api, http.MethodPost, "/api/v1/orders/order?userId=carol", s.token("carol"), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.call(s.api, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	testutil.CreateUser(t, s.db, "root", domain.RoleUser, domain.RoleAdmin)
	testutil.CreateUser(t, s.db, "dave", domain.RoleUser)
	admin, dave := s.token("root"), s.token("dave")

	code, _ := s.call(s.api, http.MethodGet, "/api/v1/users", dave, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.call(s.admin, http.MethodGet, "/admin/v1/users", dave, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.call(s.admin, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.call(s.admin, http.MethodGet, "/admin/v1/users?limit=10", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	list := decode[struct {
		Total int64 `json:"total"`
	}](t, env)
	assert.EqualValues(t, 2, list.Total)

	code, _ = s.call(s.api, http.MethodPost, "/api/v1/users/root/disable", admin, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.call(s.api, http.MethodPost, "/api/v1/users/dave/disable", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)

	// 禁用后旧 token 立即失效
	code, env = s.call(s.api, http.MethodGet, "/api/v1/me", dave, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "account is disabled", env.Msg)

	code, _ = s.call(s.admin, http.MethodDelete, "/admin/v1/users/dave", admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.call(s.api, http.MethodGet, "/api/v1/me", dave, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "user not found", env.Msg)
}

func TestSweeperClearsExpiredRevocations(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	require.NoError(t, s.app.Revoked.Revoke(ctx, "old", time.Now().UTC().Add(-time.Minute)))
	require.NoError(t, s.app.Revoked.Revoke(ctx, "live", time.Now().UTC().Add(time.Hour)))

	s.app.Sweeper.RunOnce(ctx)

	var n int64
	require.NoError(t, s.db.Model(&domain.RevokedToken{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
