package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/utils"
)

// ==================== 页面内 JSON 接口 ====================

type ratingRequest struct {
	Score   int    `json:"score" form:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment"`
}

// SubmitRating 提交/更新评分
// 聚合平均分不在本地计算，提交成功后重新拉取电影详情返回最新聚合
func (h *Handler) SubmitRating(c *gin.Context) {
	username := h.Session.Username(c)
	if username == "" {
		utils.Unauthorized(c, "")
		return
	}

	var req ratingRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "评分必须在 1 到 5 之间")
		return
	}

	movieID := c.Param("id")
	rating, err := h.Rating.Submit(movieID, username, req.Score, req.Comment, c.Request.Cookies())
	if err != nil {
		utils.BadRequest(c, errMessage(err, "评分提交失败，请重试"))
		return
	}

	movie, err := h.Movies.Refresh(movieID, c.Request.Cookies())
	if err != nil {
		// 评分已生效，聚合刷新失败不影响结果
		utils.Success(c, gin.H{"rating": rating})
		return
	}

	utils.Success(c, gin.H{
		"rating":         rating,
		"average_rating": movie.AverageRating,
		"rating_count":   movie.RatingCount,
	})
}

// UserRating 查询当前用户对某电影的评分，没有评分返回空数据
func (h *Handler) UserRating(c *gin.Context) {
	username := h.Session.Username(c)
	if username == "" {
		utils.Unauthorized(c, "")
		return
	}

	rating, err := h.Rating.Existing(c.Param("id"), username, c.Request.Cookies())
	if err != nil {
		utils.InternalServerError(c, errMessage(err, ""))
		return
	}
	utils.Success(c, gin.H{"rating": rating})
}
