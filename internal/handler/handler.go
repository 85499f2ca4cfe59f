package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/config"
	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
	"github.com/user/cinebook/internal/service"
	"github.com/user/cinebook/internal/session"
)

// Handler HTTP 处理器
type Handler struct {
	Repos     *repository.Repositories
	Config    *config.Config
	Session   *session.Store
	Movies    *service.MovieService
	Booking   *service.BookingService
	Rating    *service.RatingService
	Dashboard *service.DashboardService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	return &Handler{
		Repos:     repos,
		Config:    cfg,
		Session:   session.NewStore(repos, cfg),
		Movies:    service.NewMovieService(repos),
		Booking:   service.NewBookingService(repos),
		Rating:    service.NewRatingService(repos),
		Dashboard: service.NewDashboardService(repos),
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	// 基础数据
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
	}

	// 解析当前用户：持久化的用户名在则回源后端（短 TTL 缓存），
	// 拉取失败本次按游客渲染，身份本身不受影响
	if user := h.Session.Resolve(c); user != nil {
		res["UserInfo"] = user
	}

	// 合并传入的数据
	for k, v := range data {
		res[k] = v
	}

	return res
}

// errMessage 提取展示给用户的错误消息
// 后端的业务错误原样展示，传输层错误给统一提示
func errMessage(err error, fallback string) string {
	if apiErr, ok := err.(*repository.APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// ==================== 公开页面 ====================

// Home 首页：正在上映的电影列表，支持按标题搜索和按类型过滤
func (h *Handler) Home(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	genre := c.Query("genre")

	movies, err := h.Movies.List(c.Request.Cookies())
	data := gin.H{
		"Title":  h.Config.SiteName + " - 在线订票",
		"Movies": filterMovies(movies, query, genre),
		"Genres": movieGenres(movies),
		"Query":  query,
		"Genre":  genre,
	}
	if err != nil {
		data["Error"] = errMessage(err, "电影列表加载失败，请稍后重试")
	}
	c.HTML(http.StatusOK, "home.html", h.RenderData(c, data))
}

// filterMovies 标题子串匹配（不区分大小写）+ 类型精确匹配，空条件不过滤
func filterMovies(movies []model.Movie, query, genre string) []model.Movie {
	if query == "" && genre == "" {
		return movies
	}
	query = strings.ToLower(query)
	var filtered []model.Movie
	for _, m := range movies {
		if query != "" && !strings.Contains(strings.ToLower(m.Title), query) {
			continue
		}
		if genre != "" && m.Genre != genre {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

// movieGenres 去重后的类型列表，保持列表里的出现顺序
func movieGenres(movies []model.Movie) []string {
	var genres []string
	seen := map[string]bool{}
	for _, m := range movies {
		if m.Genre != "" && !seen[m.Genre] {
			seen[m.Genre] = true
			genres = append(genres, m.Genre)
		}
	}
	return genres
}

// MovieDetail 电影详情页：场次按日期分组，含评分列表和当前用户已有评分
func (h *Handler) MovieDetail(c *gin.Context) {
	id := c.Param("id")
	movie, err := h.Movies.Get(id, c.Request.Cookies())
	if err != nil {
		c.HTML(http.StatusNotFound, "error.html", h.RenderData(c, gin.H{
			"Title": "电影不存在",
			"Error": "你查看的电影不存在或已下架",
		}))
		return
	}

	// 场次日期去重，保持后端给出的顺序
	var dates []string
	seen := map[string]bool{}
	for _, st := range movie.Showtimes {
		if !seen[st.Date] {
			seen[st.Date] = true
			dates = append(dates, st.Date)
		}
	}

	selectedDate := c.Query("date")
	if selectedDate == "" && len(dates) > 0 {
		selectedDate = dates[0]
	}
	var showtimes []model.Showtime
	for _, st := range movie.Showtimes {
		if st.Date == selectedDate {
			showtimes = append(showtimes, st)
		}
	}

	data := gin.H{
		"Title":        movie.Title + " - " + h.Config.SiteName,
		"Movie":        movie,
		"Dates":        dates,
		"SelectedDate": selectedDate,
		"Showtimes":    showtimes,
	}

	// 评分列表失败不阻塞页面
	if summary, err := h.Repos.Rating.MovieRatings(id, c.Request.Cookies()); err == nil {
		data["RatingSummary"] = summary
	}

	// 已登录用户预取自己的评分用于表单回填；没有评分是正常空状态
	if username := h.Session.Username(c); username != "" {
		if existing, err := h.Rating.Existing(id, username, c.Request.Cookies()); err == nil && existing != nil {
			data["UserRating"] = existing
		}
	}

	c.HTML(http.StatusOK, "movie.html", h.RenderData(c, data))
}

// ==================== 认证页面 ====================

// LoginPage 登录页
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
		"Title":    "登录 - " + h.Config.SiteName,
		"Redirect": c.Query("redirect"),
	}))
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	redirect := c.PostForm("redirect")
	if redirect == "" {
		redirect = "/"
	}

	user, err := h.Session.Login(c, username, password)
	if err != nil {
		c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
			"Title":    "登录 - " + h.Config.SiteName,
			"Error":    errMessage(err, "用户名或密码错误"),
			"Username": username,
			"Redirect": redirect,
		}))
		return
	}

	if user.IsAdmin && redirect == "/" {
		redirect = "/admin"
	}
	c.Redirect(http.StatusFound, redirect)
}

// RegisterPage 注册页
func (h *Handler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
		"Title": "注册 - " + h.Config.SiteName,
	}))
}

// Register 注册，成功后引导到登录页
func (h *Handler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if username == "" || email == "" || password == "" {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title":    "注册 - " + h.Config.SiteName,
			"Error":    "请填写完整的注册信息",
			"Username": username,
			"Email":    email,
		}))
		return
	}

	if err := h.Session.Register(c, username, email, password); err != nil {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title":    "注册 - " + h.Config.SiteName,
			"Error":    errMessage(err, "注册失败，请重试"),
			"Username": username,
			"Email":    email,
		}))
		return
	}

	c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
		"Title":   "登录 - " + h.Config.SiteName,
		"Success": "注册成功，请登录",
	}))
}

// Logout 登出，后端失败也回到游客态
func (h *Handler) Logout(c *gin.Context) {
	h.Session.Logout(c)
	c.Redirect(http.StatusFound, "/")
}

// ==================== 用户中心 ====================

// Profile 个人资料页
func (h *Handler) Profile(c *gin.Context) {
	username := h.Session.Username(c)
	if username == "" {
		c.Redirect(http.StatusFound, "/login?redirect=/profile")
		return
	}

	user, err := h.Repos.User.Profile(username, c.Request.Cookies())
	data := gin.H{"Title": "个人资料 - " + h.Config.SiteName}
	if err != nil {
		data["Error"] = errMessage(err, "资料加载失败，请稍后重试")
	} else {
		data["Profile"] = user
	}
	c.HTML(http.StatusOK, "profile.html", h.RenderData(c, data))
}

// UpdateProfile 更新个人资料，认证状态不变
func (h *Handler) UpdateProfile(c *gin.Context) {
	update := repository.ProfileUpdate{
		FirstName:       c.PostForm("first_name"),
		LastName:        c.PostForm("last_name"),
		Email:           c.PostForm("email"),
		CurrentPassword: c.PostForm("current_password"),
		NewPassword:     c.PostForm("new_password"),
	}

	user, err := h.Session.UpdateProfile(c, update)
	data := gin.H{"Title": "个人资料 - " + h.Config.SiteName}
	if err != nil {
		data["Error"] = errMessage(err, "资料更新失败，请重试")
		// 表单内容保留，便于修正后重新提交
		data["Form"] = update
	} else {
		data["Profile"] = user
		data["Success"] = "资料已更新"
	}
	c.HTML(http.StatusOK, "profile.html", h.RenderData(c, data))
}

// Reservations 我的预订，分为未到场次和历史两组
func (h *Handler) Reservations(c *gin.Context) {
	username := h.Session.Username(c)
	if username == "" {
		c.Redirect(http.StatusFound, "/login?redirect=/reservations")
		return
	}

	list, err := h.Repos.Reservation.ListByUser(username, c.Request.Cookies())
	data := gin.H{"Title": "我的预订 - " + h.Config.SiteName}
	if err != nil {
		data["Error"] = errMessage(err, "预订列表加载失败，请稍后重试")
	} else {
		upcoming, past := service.SplitReservations(list)
		data["Upcoming"] = upcoming
		data["Past"] = past
	}
	c.HTML(http.StatusOK, "reservations.html", h.RenderData(c, data))
}

// CancelReservation 取消预订，取消后回到预订列表
func (h *Handler) CancelReservation(c *gin.Context) {
	username := h.Session.Username(c)
	if username == "" {
		c.Redirect(http.StatusFound, "/login?redirect=/reservations")
		return
	}

	id := c.Param("id")
	if err := h.Repos.Reservation.Cancel(id, username, c.Request.Cookies()); err != nil {
		list, _ := h.Repos.Reservation.ListByUser(username, c.Request.Cookies())
		upcoming, past := service.SplitReservations(list)
		c.HTML(http.StatusOK, "reservations.html", h.RenderData(c, gin.H{
			"Title":    "我的预订 - " + h.Config.SiteName,
			"Error":    errMessage(err, "取消失败，请重试"),
			"Upcoming": upcoming,
			"Past":     past,
		}))
		return
	}
	c.Redirect(http.StatusFound, "/reservations")
}
