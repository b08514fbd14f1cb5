package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookstore-orderengine/internal/application/book"
	appcategory "github.com/xiebiao/bookstore-orderengine/internal/application/category"
	apporder "github.com/xiebiao/bookstore-orderengine/internal/application/order"
	appuser "github.com/xiebiao/bookstore-orderengine/internal/application/user"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-orderengine/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-orderengine/pkg/jwt"
)

const (
	adminEmail    = "admin@bookstore.test"
	adminPassword = "Admin12345"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	engine  *gin.Engine
	catalog *memory.Catalog
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Metrics.Enabled = false

	catalog := memory.NewCatalog()
	orders := memory.NewOrderRepository()
	users := memory.NewUserRepository()
	categories := memory.NewCategoryRepository()
	sessions := memory.NewSessionStore()

	stock := inventory.NewService(catalog)
	jwtManager := jwt.NewManager("router-test-secret-0123456789", time.Hour, 24*time.Hour)
	userService := user.NewService(users, bcrypt.MinCost)
	events := messaging.NewPublisher(nil, false)
	breaker := circuitbreaker.NewCircuitBreaker("router-test", circuitbreaker.Config{Timeout: time.Second})

	_, err := userService.Register(context.Background(), adminEmail, adminPassword, "管理员", user.RoleAdmin)
	require.NoError(t, err)

	handlers := NewHandlers(
		handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewLoginUseCase(userService, jwtManager, sessions, time.Hour),
			appuser.NewLogoutUseCase(sessions),
			appuser.NewRefreshUseCase(jwtManager, sessions),
			appuser.NewProfileUseCase(users, userService),
		),
		handler.NewBookHandler(appbook.NewCatalogUseCase(catalog, categories, stock, catalog)),
		handler.NewCategoryHandler(appcategory.NewUseCase(categories)),
		handler.NewOrderHandler(
			apporder.NewPlaceOrderUseCase(
				apporder.NewAssembler(stock, time.Second, 50),
				orders, breaker, events, time.Second,
			),
			apporder.NewQueryOrdersUseCase(orders),
			apporder.NewUpdateStatusUseCase(orders, stock, memory.NewTransactor(), events),
		),
	)
	auth := middleware.NewAuthMiddleware(jwtManager, sessions)
	return &testApp{engine: New(cfg, handlers, auth), catalog: catalog}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (a *testApp) login(t *testing.T, email, password string) (string, appuser.UserInfo) {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[appuser.LoginResponse](t, env.Data)
	return resp.AccessToken, resp.User
}

func (a *testApp) customer(t *testing.T, email string) (string, appuser.UserInfo) {
	t.Helper()
	w, _ := a.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": email, "password": "Secret123", "nickname": "读者",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(t, email, "Secret123")
}

func (a *testApp) createBook(t *testing.T, token string, price string, stock int) appbook.BookResponse {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/books", token, gin.H{
		"title": "Go语言实战", "author": "Kennedy", "price": price, "stock": stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[appbook.BookResponse](t, env.Data)
}

func TestPing(t *testing.T) {
	app := newTestApp(t)
	w, env := app.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAuth_Required(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodGet, "/api/v1/orders/history/u1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/v1/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_AdminOnlyRoutes(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.customer(t, "reader@bookstore.test")

	w, _ := app.do(t, http.MethodPost, "/api/v1/books", token, gin.H{"title": "x", "author": "y", "price": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.customer(t, "bye@bookstore.test")

	w, _ := app.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.customer(t, "dup@bookstore.test")

	w, _ := app.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": "dup@bookstore.test", "password": "Secret123", "nickname": "读者",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaceOrder_Success(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)
	token, me := app.customer(t, "buyer@bookstore.test")
	b := app.createBook(t, admin, "10.00", 5)
	assert.Equal(t, int64(1000), b.Price)

	w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
		"user_id": me.ID,
		"lines":   []gin.H{{"book_id": b.ID, "quantity": 3}},
		"coupon":  "ignored",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	o := decode[apporder.OrderResponse](t, env.Data)
	assert.Equal(t, int64(3000), o.TotalAmount)
	assert.Equal(t, "30.00", o.Total)
	assert.Equal(t, "PENDING", o.Status)
	assert.Equal(t, me.ID, o.UserID)

	_, env = app.do(t, http.MethodGet, "/api/v1/books/"+b.ID, "", nil)
	assert.Equal(t, 2, decode[appbook.BookResponse](t, env.Data).Stock)

	w, env = app.do(t, http.MethodGet, "/api/v1/orders/history/"+me.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]apporder.OrderResponse](t, env.Data), 1)
}

func TestPlaceOrder_DefaultsToCaller(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)
	token, me := app.customer(t, "self@bookstore.test")
	b := app.createBook(t, admin, "8.5", 1)

	w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
		"lines": []gin.H{{"book_id": b.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, me.ID, decode[apporder.OrderResponse](t, env.Data).UserID)
}

func TestPlaceOrder_Failures(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)
	token, me := app.customer(t, "fail@bookstore.test")
	b := app.createBook(t, admin, "10", 2)

	t.Run("其他用户", func(t *testing.T) {
		w, _ := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
			"user_id": "someone-else",
			"lines":   []gin.H{{"book_id": b.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("库存不足", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
			"user_id": me.ID,
			"lines":   []gin.H{{"book_id": b.ID, "quantity": 3}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 40001, env.Code)
	})

	t.Run("图书不存在", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
			"user_id": me.ID,
			"lines":   []gin.H{{"book_id": b.ID, "quantity": 1}, {"book_id": "missing", "quantity": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 40006, env.Code)
	})

	t.Run("空订单", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{"user_id": me.ID, "lines": []gin.H{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 40900, env.Code)
	})

	t.Run("数量非正", func(t *testing.T) {
		w, _ := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
			"user_id": me.ID,
			"lines":   []gin.H{{"book_id": b.ID, "quantity": 0}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("用户ID只有空白", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
			"user_id": "   ",
			"lines":   []gin.H{{"book_id": b.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 40900, env.Code)
	})

	t.Run("数量超过库存上限", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
			"user_id": me.ID,
			"lines":   []gin.H{{"book_id": b.ID, "quantity": int64(math.MaxInt64)}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 40900, env.Code)
	})

	// 失败的下单不留下任何预占
	_, env := app.do(t, http.MethodGet, "/api/v1/books/"+b.ID, "", nil)
	assert.Equal(t, 2, decode[appbook.BookResponse](t, env.Data).Stock)

	w, _ := app.do(t, http.MethodGet, "/api/v1/orders/history/"+me.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrder_ConcurrentNoOversell(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)
	token, me := app.customer(t, "rush@bookstore.test")
	b := app.createBook(t, admin, "1", 10)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(gin.H{"user_id": me.ID, "lines": []gin.H{{"book_id": b.ID, "quantity": 1}}})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			app.engine.ServeHTTP(w, req)
			if w.Code == http.StatusCreated {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, success)
	item, err := app.catalog.GetStock(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Stock)
}

func TestOrderVisibility(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)
	alice, aliceInfo := app.customer(t, "alice@bookstore.test")
	bob, _ := app.customer(t, "bob@bookstore.test")
	b := app.createBook(t, admin, "5", 5)

	_, env := app.do(t, http.MethodPost, "/api/v1/orders", alice, gin.H{
		"lines": []gin.H{{"book_id": b.ID, "quantity": 1}},
	})
	o := decode[apporder.OrderResponse](t, env.Data)

	w, _ := app.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = app.do(t, http.MethodGet, "/api/v1/orders/history/"+aliceInfo.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = app.do(t, http.MethodGet, "/api/v1/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]apporder.OrderResponse](t, env.Data), 1)
}

func TestUpdateStatus_CancelRestocks(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)
	token, _ := app.customer(t, "cancel@bookstore.test")
	b := app.createBook(t, admin, "12.30", 4)

	_, env := app.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
		"lines": []gin.H{{"book_id": b.ID, "quantity": 3}},
	})
	o := decode[apporder.OrderResponse](t, env.Data)
	path := fmt.Sprintf("/api/v1/orders/%s/status", o.ID)

	w, _ := app.do(t, http.MethodPatch, path, admin, gin.H{"status": "PENDING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodPatch, path, admin, gin.H{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decode[apporder.OrderResponse](t, env.Data).Status)

	_, env = app.do(t, http.MethodGet, "/api/v1/books/"+b.ID, "", nil)
	assert.Equal(t, 4, decode[appbook.BookResponse](t, env.Data).Stock)

	w, env = app.do(t, http.MethodPatch, path, admin, gin.H{"status": "PROCESSING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40002, env.Code)
}

func TestBooks_CRUD(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.login(t, adminEmail, adminPassword)

	w, env := app.do(t, http.MethodPost, "/api/v1/categories", admin, gin.H{"name": "编程"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode[appcategory.CategoryResponse](t, env.Data)

	w, _ = app.do(t, http.MethodPost, "/api/v1/books", admin, gin.H{
		"title": "无效价格", "author": "a", "price": "1.005",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodPost, "/api/v1/books", admin, gin.H{
		"title": "Go并发编程", "author": "郝林", "price": 59.9, "stock": 3, "category_id": cat.ID,
		"published_date": "2023-05-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[appbook.BookResponse](t, env.Data)
	assert.Equal(t, int64(5990), b.Price)
	assert.Equal(t, "2023-05-01", b.PublishedDate)

	w, env = app.do(t, http.MethodPatch, "/api/v1/books/"+b.ID, admin, gin.H{"price": "49.90"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[appbook.BookResponse](t, env.Data)
	assert.Equal(t, int64(4990), updated.Price)
	assert.Equal(t, 3, updated.Stock)

	w, env = app.do(t, http.MethodPost, "/api/v1/books/"+b.ID+"/stock", admin, gin.H{"quantity": 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 10, decode[appbook.BookResponse](t, env.Data).Stock)

	w, _ = app.do(t, http.MethodPost, "/api/v1/books/"+b.ID+"/stock", admin, gin.H{"quantity": int64(math.MaxInt64)})
	assert.Equal(t, http.StatusBadRequest, w.Code, "补货量超过上限")
	w, _ = app.do(t, http.MethodPost, "/api/v1/books/"+b.ID+"/stock", admin, gin.H{"quantity": inventory.MaxStock - 5})
	assert.Equal(t, http.StatusBadRequest, w.Code, "补货后超过上限")
	_, env = app.do(t, http.MethodGet, "/api/v1/books/"+b.ID, "", nil)
	assert.Equal(t, 10, decode[appbook.BookResponse](t, env.Data).Stock)

	w, env = app.do(t, http.MethodGet, "/api/v1/books?keyword="+url.QueryEscape("并发")+"&category_id="+cat.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		List  []appbook.BookResponse `json:"list"`
		Total int64                  `json:"total"`
	}](t, env.Data)
	assert.Equal(t, int64(1), page.Total)

	w, _ = app.do(t, http.MethodDelete, "/api/v1/books/"+b.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = app.do(t, http.MethodGet, "/api/v1/books/"+b.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile_RoleChangeNeedsAdmin(t *testing.T) {
	app := newTestApp(t)
	token, me := app.customer(t, "role@bookstore.test")

	w, _ := app.do(t, http.MethodPatch, "/api/v1/profile", token, gin.H{"role": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := app.do(t, http.MethodPatch, "/api/v1/profile", token, gin.H{"nickname": "新昵称"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "新昵称", decode[appuser.UserInfo](t, env.Data).Nickname)

	admin, _ := app.login(t, adminEmail, adminPassword)
	w, env = app.do(t, http.MethodPatch, "/api/v1/users/"+me.ID, admin, gin.H{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ADMIN", decode[appuser.UserInfo](t, env.Data).Role)
}

func TestCORS_Preflight(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Authorization")
}
