package session

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/config"
	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
	"github.com/user/cinebook/internal/utils"
)

func init() {
	gob.Register(model.SessionUser{})
	gin.SetMode(gin.TestMode)
}

// authBackend 登录/登出后端假件，logoutFails / currentFails 分别让对应接口返回 500
type authBackend struct {
	logoutFails  bool
	currentFails bool
}

func (b *authBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/login/":
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid username or password"}`))
			return
		}
		user := model.User{ID: "u1", Username: creds["username"], Email: "a@b.c", IsAdmin: creds["username"] == "admin"}
		json.NewEncoder(w).Encode(user)
	case "/logout/":
		if b.logoutFails {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"backend down"}`))
			return
		}
		w.Write([]byte(`{"message":"ok"}`))
	case "/user/current/":
		if b.currentFails {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"backend down"}`))
			return
		}
		user := model.User{ID: "u1", Username: r.URL.Query().Get("username"), Email: "a@b.c"}
		json.NewEncoder(w).Encode(user)
	default:
		http.NotFound(w, r)
	}
}

// newSessionApp 组装带会话中间件的测试应用：
// POST /login、POST /logout、GET /whoami
func newSessionApp(t *testing.T, backend *authBackend) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	utils.InitCache()
	repos := repository.NewRepositories(repository.InitBackend(srv.URL, 5*time.Second))
	cfg := &config.Config{AppSecret: "test-secret", SessionTTL: 24 * time.Hour}
	store := NewStore(repos, cfg)

	r := gin.New()
	r.Use(sessions.Sessions("cinebook_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/login", func(c *gin.Context) {
		user, err := store.Login(c, c.PostForm("username"), c.PostForm("password"))
		if err != nil {
			c.String(http.StatusUnauthorized, "denied")
			return
		}
		c.String(http.StatusOK, user.Username)
	})
	r.POST("/logout", func(c *gin.Context) {
		store.Logout(c)
		c.String(http.StatusOK, "bye")
	})
	r.GET("/me", func(c *gin.Context) {
		user := store.Resolve(c)
		if user == nil {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, user.Username+":"+user.Email)
	})
	r.GET("/whoami", func(c *gin.Context) {
		if !store.IsAuthenticated(c) {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, store.Username(c))
	})
	return r
}

// do 携带上一响应的 Set-Cookie 发起下一次请求，模拟浏览器
func do(r *gin.Engine, method, path, form string, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	var body io.Reader
	if form != "" {
		body = strings.NewReader(form)
	}
	req := httptest.NewRequest(method, path, body)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if prev != nil {
		for _, ck := range prev.Result().Cookies() {
			if ck.MaxAge >= 0 {
				req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
			}
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieValue(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name && ck.MaxAge >= 0 {
			return ck.Value, true
		}
	}
	return "", false
}

func TestLogin_PersistsIdentityAcrossRequests(t *testing.T) {
	r := newSessionApp(t, &authBackend{})

	login := do(r, http.MethodPost, "/login", "username=alice&password=secret", nil)
	if login.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d", login.Code)
	}

	if v, ok := cookieValue(login, CookieAuth); !ok || v != "true" {
		t.Fatalf("expected auth marker cookie true, got %q ok=%v", v, ok)
	}
	if _, ok := cookieValue(login, CookieToken); !ok {
		t.Fatal("expected signed token cookie")
	}
	if _, ok := cookieValue(login, CookieAdmin); ok {
		t.Fatal("non-admin login must not set is_admin cookie")
	}

	whoami := do(r, http.MethodGet, "/whoami", "", login)
	if got := whoami.Body.String(); got != "alice" {
		t.Fatalf("expected persisted identity alice, got %q", got)
	}
}

func TestLogin_AdminGetsAdminMarker(t *testing.T) {
	r := newSessionApp(t, &authBackend{})

	login := do(r, http.MethodPost, "/login", "username=admin&password=secret", nil)
	if login.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d", login.Code)
	}
	if v, ok := cookieValue(login, CookieAdmin); !ok || v != "true" {
		t.Fatalf("expected is_admin marker for admin, got %q ok=%v", v, ok)
	}
}

func TestLogin_FailureLeavesGuest(t *testing.T) {
	r := newSessionApp(t, &authBackend{})

	login := do(r, http.MethodPost, "/login", "username=alice&password=wrong", nil)
	if login.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", login.Code)
	}
	if _, ok := cookieValue(login, CookieAuth); ok {
		t.Fatal("failed login must not set auth marker")
	}

	whoami := do(r, http.MethodGet, "/whoami", "", login)
	if got := whoami.Body.String(); got != "guest" {
		t.Fatalf("expected guest after failed login, got %q", got)
	}
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	backend := &authBackend{}
	r := newSessionApp(t, backend)

	login := do(r, http.MethodPost, "/login", "username=alice&password=secret", nil)
	if login.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d", login.Code)
	}

	// 后端登出挂了，本地会话仍要清空
	backend.logoutFails = true
	logout := do(r, http.MethodPost, "/logout", "", login)
	if logout.Code != http.StatusOK {
		t.Fatalf("expected logout handler to succeed, got %d", logout.Code)
	}

	whoami := do(r, http.MethodGet, "/whoami", "", logout)
	if got := whoami.Body.String(); got != "guest" {
		t.Fatalf("expected guest after logout, got %q", got)
	}
}

func TestResolve_FetchesBackendUser(t *testing.T) {
	r := newSessionApp(t, &authBackend{})

	if me := do(r, http.MethodGet, "/me", "", nil); me.Body.String() != "guest" {
		t.Fatalf("expected guest before login, got %q", me.Body.String())
	}

	login := do(r, http.MethodPost, "/login", "username=alice&password=secret", nil)
	me := do(r, http.MethodGet, "/me", "", login)
	if got := me.Body.String(); got != "alice:a@b.c" {
		t.Fatalf("expected resolved backend user, got %q", got)
	}
}

// 回源失败本次按游客处理，但持久化身份不销毁，后端恢复后自动回来
func TestResolve_FetchFailureIsGuestWithoutDestroyingIdentity(t *testing.T) {
	backend := &authBackend{}
	r := newSessionApp(t, backend)

	login := do(r, http.MethodPost, "/login", "username=alice&password=secret", nil)

	backend.currentFails = true
	utils.CacheDelete("session_user:alice") // 模拟缓存过期
	me := do(r, http.MethodGet, "/me", "", login)
	if got := me.Body.String(); got != "guest" {
		t.Fatalf("expected guest while backend is down, got %q", got)
	}

	backend.currentFails = false
	me = do(r, http.MethodGet, "/me", "", login)
	if got := me.Body.String(); got != "alice:a@b.c" {
		t.Fatalf("expected identity to survive the outage, got %q", got)
	}
}
