//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// 集成测试针对已启动的服务（go run ./cmd/api），启动时需配置 BOOKSTORE_ADMIN_EMAIL/BOOKSTORE_ADMIN_PASSWORD
// 与下面的管理员账号一致。环境变量：
//
//	BOOKSTORE_IT_BASE_URL        默认 http://localhost:8080/api/v1
//	BOOKSTORE_IT_ADMIN_EMAIL     默认 admin@bookstore.local
//	BOOKSTORE_IT_ADMIN_PASSWORD  默认 admin12345

// Timeout HTTP请求超时时间
const Timeout = 10 * time.Second

var (
	BaseURL       = env("BOOKSTORE_IT_BASE_URL", "http://localhost:8080/api/v1")
	adminEmail    = env("BOOKSTORE_IT_ADMIN_EMAIL", "admin@bookstore.local")
	adminPassword = env("BOOKSTORE_IT_ADMIN_PASSWORD", "admin12345")
	client        = &http.Client{Timeout: Timeout}
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UserData 用户
type UserData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	User         UserData `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// OrderData 订单响应数据
type OrderData struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	TotalAmount int64  `json:"total_amount"`
	Total       string `json:"total"`
	Status      string `json:"status"`
}

// Do 发送请求并解析统一响应，204时Data为空
func Do(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := Response{Status: resp.StatusCode}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	}
	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return Do(t, http.MethodPost, url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	return Do(t, http.MethodGet, url, nil, token)
}

// Decode 解析Data
func Decode[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "解析响应数据失败: %s", string(resp.Data))
	return v
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%s@test.com", prefix, uuid.NewString()[:8])
}

// Login 登录并返回Token和用户信息
func Login(t *testing.T, email, password string) LoginData {
	t.Helper()
	resp := PostJSON(t, BaseURL+"/users/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, 0, resp.Code, "登录失败: %s", resp.Message)
	return Decode[LoginData](t, resp)
}

// AdminToken 管理员Token（服务启动时按配置创建）
func AdminToken(t *testing.T) string {
	return Login(t, adminEmail, adminPassword).AccessToken
}

// RegisterTestUser 注册+登录
func RegisterTestUser(t *testing.T, nickname string) LoginData {
	t.Helper()
	email := GenerateTestEmail(nickname)
	resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}, "")
	require.Equal(t, 0, resp.Code, "注册失败: %s", resp.Message)
	return Login(t, email, "Test1234")
}

// PublishTestBook 以管理员身份上架图书
func PublishTestBook(t *testing.T, adminToken, title, price string, stock int) BookData {
	t.Helper()
	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"title":       title,
		"author":      "测试作者",
		"price":       price,
		"stock":       stock,
		"description": "集成测试用图书",
	}, adminToken)
	require.Equal(t, 0, resp.Code, "图书上架失败: %s", resp.Message)
	return Decode[BookData](t, resp)
}

// GetBook 查询图书
func GetBook(t *testing.T, id string) BookData {
	t.Helper()
	resp := GetJSON(t, BaseURL+"/books/"+id, "")
	require.Equal(t, 0, resp.Code, "查询图书失败: %s", resp.Message)
	return Decode[BookData](t, resp)
}
