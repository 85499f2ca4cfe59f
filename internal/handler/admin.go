package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/middleware"
	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
	"github.com/user/cinebook/internal/service"
	"github.com/user/cinebook/internal/utils"
)

// ==================== 管理后台 ====================

// AdminDashboard 后台首页，统计拉取失败时展示最近一次成功的数据
func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, degraded := h.Dashboard.Stats(middleware.GetUsername(c), c.Request.Cookies())

	c.HTML(http.StatusOK, "admin_dashboard.html", h.RenderData(c, gin.H{
		"Title":    "管理后台 - " + h.Config.SiteName,
		"Stats":    stats,
		"Degraded": degraded,
	}))
}

// AdminMovies 电影管理页面
func (h *Handler) AdminMovies(c *gin.Context) {
	movies, err := h.Repos.Movie.List(c.Request.Cookies())
	data := gin.H{
		"Title":  "电影管理 - " + h.Config.SiteName,
		"Movies": movies,
	}
	if err != nil {
		data["Error"] = errMessage(err, "电影列表加载失败")
	}
	c.HTML(http.StatusOK, "admin_movies.html", h.RenderData(c, data))
}

// movieFormFromRequest 从 multipart 表单组装电影数据，海报可选
func movieFormFromRequest(c *gin.Context) repository.MovieForm {
	form := repository.MovieForm{
		Title:       c.PostForm("title"),
		Genre:       c.PostForm("genre"),
		Director:    c.PostForm("director"),
		Duration:    c.PostForm("duration"),
		Description: c.PostForm("description"),
		Cast:        c.PostForm("cast"),
	}
	if file, header, err := c.Request.FormFile("poster_image"); err == nil {
		form.Poster = file
		form.PosterName = header.Filename
	}
	return form
}

// AdminMovieCreate 创建电影，multipart 表单原样转发给后端
func (h *Handler) AdminMovieCreate(c *gin.Context) {
	form := movieFormFromRequest(c)
	if form.Title == "" {
		utils.BadRequest(c, "电影标题不能为空")
		return
	}

	movie, err := h.Repos.Movie.Create(form, c.Request.Cookies())
	if err != nil {
		utils.InternalServerError(c, errMessage(err, "创建失败"))
		return
	}

	h.Movies.Invalidate("")
	utils.Success(c, movie)
}

// AdminMovieUpdate 更新电影
func (h *Handler) AdminMovieUpdate(c *gin.Context) {
	id := c.Param("id")
	movie, err := h.Repos.Movie.Update(id, movieFormFromRequest(c), c.Request.Cookies())
	if err != nil {
		utils.InternalServerError(c, errMessage(err, "更新失败"))
		return
	}

	h.Movies.Invalidate(id)
	utils.Success(c, movie)
}

// AdminMovieDelete 删除电影
func (h *Handler) AdminMovieDelete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repos.Movie.Delete(id, c.Request.Cookies()); err != nil {
		utils.InternalServerError(c, errMessage(err, "删除失败"))
		return
	}

	h.Movies.Invalidate(id)
	utils.Success(c, nil)
}

// AdminShowtimes 场次管理页面，支持按日期/电影过滤
func (h *Handler) AdminShowtimes(c *gin.Context) {
	date := c.Query("date")
	movieID := c.Query("movie_id")

	showtimes, err := h.Repos.Showtime.List(date, movieID, c.Request.Cookies())
	movies, _ := h.Repos.Movie.List(c.Request.Cookies())

	data := gin.H{
		"Title":     "场次管理 - " + h.Config.SiteName,
		"Showtimes": showtimes,
		"Movies":    movies,
		"Date":      date,
		"MovieID":   movieID,
	}
	if err != nil {
		data["Error"] = errMessage(err, "场次列表加载失败")
	}
	c.HTML(http.StatusOK, "admin_showtimes.html", h.RenderData(c, data))
}

// AdminShowtimeCreate 创建场次
func (h *Handler) AdminShowtimeCreate(c *gin.Context) {
	capacity, err := strconv.Atoi(c.DefaultPostForm("capacity", "50"))
	if err != nil || capacity < 1 {
		utils.BadRequest(c, "无效的座位数")
		return
	}

	movieID := c.PostForm("movie_id")
	date := c.PostForm("date")
	timeSlot := c.PostForm("time")
	if movieID == "" || date == "" || timeSlot == "" {
		utils.BadRequest(c, "电影、日期和时间不能为空")
		return
	}

	showtime, err := h.Repos.Showtime.Create(movieID, date, timeSlot, capacity, c.Request.Cookies())
	if err != nil {
		utils.InternalServerError(c, errMessage(err, "创建失败"))
		return
	}

	h.Movies.Invalidate(movieID)
	utils.Success(c, showtime)
}

// AdminShowtimeDelete 删除场次
func (h *Handler) AdminShowtimeDelete(c *gin.Context) {
	if err := h.Repos.Showtime.Delete(c.Param("id"), c.Request.Cookies()); err != nil {
		utils.InternalServerError(c, errMessage(err, "删除失败"))
		return
	}

	h.Movies.Invalidate("")
	utils.Success(c, nil)
}

// AdminUsers 用户管理页面
func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.Repos.Admin.Users(middleware.GetUsername(c), c.Request.Cookies())
	data := gin.H{
		"Title": "用户管理 - " + h.Config.SiteName,
		"Users": users,
	}
	if err != nil {
		data["Error"] = errMessage(err, "用户列表加载失败")
	}
	c.HTML(http.StatusOK, "admin_users.html", h.RenderData(c, data))
}

// AdminUserPromote 提升为管理员
func (h *Handler) AdminUserPromote(c *gin.Context) {
	if err := h.Repos.Admin.Promote(c.Param("id"), c.Request.Cookies()); err != nil {
		utils.InternalServerError(c, errMessage(err, "操作失败"))
		return
	}
	utils.Success(c, nil)
}

// AdminUserDemote 取消管理员
func (h *Handler) AdminUserDemote(c *gin.Context) {
	if err := h.Repos.Admin.Demote(c.Param("id"), c.Request.Cookies()); err != nil {
		utils.InternalServerError(c, errMessage(err, "操作失败"))
		return
	}
	utils.Success(c, nil)
}

// AdminReservations 预订管理：按用户名检索预订
func (h *Handler) AdminReservations(c *gin.Context) {
	username := c.Query("username")
	data := gin.H{
		"Title":    "预订管理 - " + h.Config.SiteName,
		"Username": username,
	}

	if username != "" {
		list, err := h.Repos.Reservation.ListByUser(username, c.Request.Cookies())
		if err != nil {
			data["Error"] = errMessage(err, "预订检索失败")
		} else {
			upcoming, past := service.SplitReservations(list)
			data["Upcoming"] = upcoming
			data["Past"] = past
		}
	}
	c.HTML(http.StatusOK, "admin_reservations.html", h.RenderData(c, data))
}

// AdminReservationCancel 管理员取消预订
func (h *Handler) AdminReservationCancel(c *gin.Context) {
	username := c.PostForm("username")
	if err := h.Repos.Reservation.Cancel(c.Param("id"), username, c.Request.Cookies()); err != nil {
		utils.InternalServerError(c, errMessage(err, "取消失败"))
		return
	}
	utils.Success(c, nil)
}

// AdminVenues 影院参考数据页面（只读）
func (h *Handler) AdminVenues(c *gin.Context) {
	venues, err := h.Repos.Admin.Venues(c.Request.Cookies())
	data := gin.H{
		"Title":  "影院数据 - " + h.Config.SiteName,
		"Venues": venues,
	}
	if err != nil {
		data["Error"] = errMessage(err, "影院数据加载失败")
		data["Venues"] = []model.Venue{}
	}
	c.HTML(http.StatusOK, "admin_venues.html", h.RenderData(c, data))
}
