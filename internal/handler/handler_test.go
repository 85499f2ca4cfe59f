package handler

import (
	"encoding/gob"
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
	"github.com/user/cinebook/internal/service"
	"github.com/user/cinebook/internal/utils"
)

func init() {
	gob.Register(model.SessionUser{})
	gob.Register(service.BookingFlow{})
	gin.SetMode(gin.TestMode)
}

func catalog() []model.Movie {
	return []model.Movie{
		{ID: "m1", Title: "Inception", Genre: "科幻"},
		{ID: "m2", Title: "Interstellar", Genre: "科幻"},
		{ID: "m3", Title: "Coco", Genre: "动画"},
		{ID: "m4", Title: "Heat", Genre: ""},
	}
}

func TestFilterMovies(t *testing.T) {
	movies := catalog()

	cases := []struct {
		name  string
		query string
		genre string
		want  []string
	}{
		{name: "no filter", want: []string{"m1", "m2", "m3", "m4"}},
		{name: "title substring case-insensitive", query: "inter", want: []string{"m2"}},
		{name: "genre exact", genre: "科幻", want: []string{"m1", "m2"}},
		{name: "both combined", query: "in", genre: "科幻", want: []string{"m1", "m2"}},
		{name: "no match", query: "missing", want: nil},
	}
	for _, tc := range cases {
		got := filterMovies(movies, tc.query, tc.genre)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %d movies, got %+v", tc.name, len(tc.want), got)
		}
		for i, id := range tc.want {
			if got[i].ID != id {
				t.Fatalf("%s: expected %s at %d, got %s", tc.name, id, i, got[i].ID)
			}
		}
	}
}

func TestMovieGenres(t *testing.T) {
	genres := movieGenres(catalog())
	if len(genres) != 2 || genres[0] != "科幻" || genres[1] != "动画" {
		t.Fatalf("expected deduplicated genres in order, got %v", genres)
	}
}

// newBookingApp 组装带会话的测试应用，/seed 直接往会话里放一个已选场次的流程
func newBookingApp(t *testing.T) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	utils.InitCache()
	cfg := &config.Config{AppSecret: "test-secret", SessionTTL: time.Hour, SiteName: "CineBook"}
	h := NewHandler(repository.NewRepositories(repository.InitBackend(srv.URL, time.Second)), cfg)

	r := gin.New()
	r.Use(sessions.Sessions("cinebook_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/seed", func(c *gin.Context) {
		saveFlow(c, &service.BookingFlow{
			State:          service.StateShowtimeSelected,
			MovieID:        "m1",
			ShowtimeID:     "s1",
			AvailableSeats: 5,
			TicketCount:    1,
		})
		c.Status(http.StatusOK)
	})
	r.POST("/booking/tickets", h.ConfirmTickets)
	return r
}

func post(r *gin.Engine, path, form string, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if prev != nil {
		for _, ck := range prev.Result().Cookies() {
			req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConfirmTickets_CountParsing(t *testing.T) {
	r := newBookingApp(t)
	seed := post(r, "/seed", "", nil)

	// 非数字张数按 0 处理，被状态机拒绝后留在选张数页
	w := post(r, "/booking/tickets", "ticket_count=3x", seed)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/booking/tickets?error=") {
		t.Fatalf("expected rejection redirect, got %q", loc)
	}

	seed = post(r, "/seed", "", nil)
	w = post(r, "/booking/tickets", "ticket_count=2", seed)
	if loc := w.Header().Get("Location"); loc != "/booking/payment" {
		t.Fatalf("expected advance to payment, got %q", loc)
	}
}
