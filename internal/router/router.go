package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/handler"
	"github.com/user/cinebook/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 公开页面 ====================
	r.GET("/", h.Home)
	r.GET("/movies/:id", h.MovieDetail)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)

	// ==================== 用户中心（需要登录）====================
	user := r.Group("/")
	user.Use(middleware.RequireAuth())
	{
		user.GET("/profile", h.Profile)
		user.POST("/profile", h.UpdateProfile)
		user.GET("/reservations", h.Reservations)
		user.POST("/reservations/:id/cancel", h.CancelReservation)
	}

	// ==================== 预订流程（需要登录）====================
	booking := r.Group("/booking")
	booking.Use(middleware.RequireAuth())
	{
		booking.POST("/select", h.SelectShowtime)
		booking.GET("/tickets", h.TicketsPage)
		booking.POST("/tickets", h.ConfirmTickets)
		booking.GET("/payment", h.PaymentPage)
		booking.POST("/payment", h.SubmitPayment)
		booking.POST("/back", h.BookingBack)
	}
	r.GET("/payment-success", h.PaymentSuccess)

	// ==================== 页面内 JSON 接口 ====================
	api := r.Group("/api")
	{
		api.POST("/movies/:id/ratings", h.SubmitRating)
		api.GET("/movies/:id/ratings/user", h.UserRating)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.Use(middleware.RequireAdminClaims(h.Config.AppSecret))
	{
		admin.GET("", h.AdminDashboard)

		admin.GET("/movies", h.AdminMovies)
		admin.POST("/movies", h.AdminMovieCreate)
		admin.POST("/movies/:id/update", h.AdminMovieUpdate)
		admin.POST("/movies/:id/delete", h.AdminMovieDelete)

		admin.GET("/showtimes", h.AdminShowtimes)
		admin.POST("/showtimes", h.AdminShowtimeCreate)
		admin.POST("/showtimes/:id/delete", h.AdminShowtimeDelete)

		admin.GET("/users", h.AdminUsers)
		admin.POST("/users/:id/promote", h.AdminUserPromote)
		admin.POST("/users/:id/demote", h.AdminUserDemote)

		admin.GET("/reservations", h.AdminReservations)
		admin.POST("/reservations/:id/cancel", h.AdminReservationCancel)

		admin.GET("/venues", h.AdminVenues)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
		"money": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
	}

	// 注册所有页面模板
	pages := []string{
		"home", "movie", "error",
		"login", "register",
		"profile", "reservations",
		"booking_tickets", "booking_payment", "payment_success",
		"admin_dashboard", "admin_movies", "admin_showtimes",
		"admin_users", "admin_reservations", "admin_venues",
	}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
