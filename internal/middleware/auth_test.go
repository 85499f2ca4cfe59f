package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newGuardedRouter(guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", guards...)
	group.GET("/guarded", func(c *gin.Context) {
		c.String(http.StatusOK, "ok:"+GetUsername(c))
	})
	return r
}

func doGet(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newGuardedRouter(RequireAuth())

	w := doGet(r, "/guarded")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?redirect=/guarded" {
		t.Fatalf("unexpected redirect target %q", loc)
	}

	w = doGet(r, "/guarded", &http.Cookie{Name: "auth", Value: "false"})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302 for auth=false, got %d", w.Code)
	}

	w = doGet(r, "/guarded", &http.Cookie{Name: "auth", Value: "true"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for auth=true, got %d", w.Code)
	}
}

// 守卫是两个标记 Cookie 的纯函数，逐格验证真值表
func TestRequireAdmin_CookieMatrix(t *testing.T) {
	r := newGuardedRouter(RequireAdmin())

	cases := []struct {
		name    string
		auth    string
		admin   string
		allowed bool
	}{
		{name: "both true", auth: "true", admin: "true", allowed: true},
		{name: "auth only", auth: "true", admin: "", allowed: false},
		{name: "admin only", auth: "", admin: "true", allowed: false},
		{name: "both missing", auth: "", admin: "", allowed: false},
		{name: "admin false", auth: "true", admin: "false", allowed: false},
		{name: "auth false", auth: "false", admin: "true", allowed: false},
	}
	for _, tc := range cases {
		var cookies []*http.Cookie
		if tc.auth != "" {
			cookies = append(cookies, &http.Cookie{Name: "auth", Value: tc.auth})
		}
		if tc.admin != "" {
			cookies = append(cookies, &http.Cookie{Name: "is_admin", Value: tc.admin})
		}

		w := doGet(r, "/guarded", cookies...)
		if tc.allowed && w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.name, w.Code)
		}
		if !tc.allowed {
			if w.Code != http.StatusFound {
				t.Fatalf("%s: expected 302, got %d", tc.name, w.Code)
			}
			if loc := w.Header().Get("Location"); loc != "/" {
				t.Fatalf("%s: expected redirect to /, got %q", tc.name, loc)
			}
		}
	}
}

func TestRequireAdminClaims(t *testing.T) {
	const secret = "test-secret"
	r := newGuardedRouter(RequireAdminClaims(secret))

	// 没有签名声明
	if w := doGet(r, "/guarded"); w.Code != http.StatusFound {
		t.Fatalf("expected 302 without token, got %d", w.Code)
	}

	// 普通用户的声明
	userToken, err := GenerateToken("alice", false, secret, time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if w := doGet(r, "/guarded", &http.Cookie{Name: "token", Value: userToken}); w.Code != http.StatusFound {
		t.Fatalf("expected 302 for non-admin claims, got %d", w.Code)
	}

	// 用错误密钥签发的声明
	forged, err := GenerateToken("mallory", true, "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if w := doGet(r, "/guarded", &http.Cookie{Name: "token", Value: forged}); w.Code != http.StatusFound {
		t.Fatalf("expected 302 for forged token, got %d", w.Code)
	}

	// 已过期的声明
	expired, err := GenerateToken("admin", true, secret, -time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if w := doGet(r, "/guarded", &http.Cookie{Name: "token", Value: expired}); w.Code != http.StatusFound {
		t.Fatalf("expected 302 for expired token, got %d", w.Code)
	}

	// 合法管理员声明放行，并把用户名写入上下文
	adminToken, err := GenerateToken("admin", true, secret, time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	w := doGet(r, "/guarded", &http.Cookie{Name: "token", Value: adminToken})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin claims, got %d", w.Code)
	}
	if body := w.Body.String(); body != "ok:admin" {
		t.Fatalf("expected username from claims in context, got %q", body)
	}
}
