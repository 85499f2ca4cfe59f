package session

import (
	"log"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/cinebook/internal/config"
	"github.com/user/cinebook/internal/middleware"
	"github.com/user/cinebook/internal/model"
	"github.com/user/cinebook/internal/repository"
	"github.com/user/cinebook/internal/utils"
)

// Session 中的键名与标记 Cookie 名
// auth / is_admin 是路由守卫读取的布尔标记，token 是签名后的声明
const (
	userInfoKey = "userinfo"

	CookieAuth  = "auth"
	CookieAdmin = "is_admin"
	CookieToken = "token"
)

// Store 会话存储：唯一的共享状态是持久化在签名 Cookie 里的用户名，
// 用户记录本身始终以后端为准
type Store struct {
	repos *repository.Repositories
	cfg   *config.Config

	// 串行化登录/登出/资料更新，避免并发请求交错写会话
	mu sync.Mutex
}

func NewStore(repos *repository.Repositories, cfg *config.Config) *Store {
	return &Store{repos: repos, cfg: cfg}
}

// Resolve 解析当前请求的用户，返回 nil 表示游客
// 持久化的用户名存在时向后端拉取用户记录（短 TTL 缓存），
// 拉取失败按游客处理，但不销毁持久化身份，后端恢复后会话自动回来
func (s *Store) Resolve(c *gin.Context) *model.User {
	su, ok := s.sessionUser(c)
	if !ok {
		return nil
	}

	cacheKey := "session_user:" + su.Username
	if cached, found := utils.CacheGet(cacheKey); found {
		if user, ok := cached.(*model.User); ok {
			return user
		}
	}

	user, err := s.repos.User.Current(su.Username, c.Request.Cookies())
	if err != nil {
		log.Printf("[会话] 拉取当前用户失败 (%s): %v", su.Username, err)
		return nil
	}

	utils.CacheSet(cacheKey, user, time.Minute)
	return user
}

// Login 登录：后端验证通过后持久化用户名、签发声明 Cookie 并设置守卫标记
// 失败时调用方保持游客状态，错误原样返回给表单
func (s *Store) Login(c *gin.Context, username, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repos.User.Login(username, password, c.Request.Cookies())
	if err != nil {
		return nil, err
	}

	sess := sessions.Default(c)
	sess.Set(userInfoKey, model.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	})
	if err := sess.Save(); err != nil {
		return nil, err
	}

	// 管理员身份只来自后端的登录响应，客户端从不自行断言
	token, err := middleware.GenerateToken(user.Username, user.IsAdmin, s.cfg.AppSecret, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	maxAge := int(s.cfg.SessionTTL.Seconds())
	c.SetCookie(CookieToken, token, maxAge, "/", "", false, true)
	c.SetCookie(CookieAuth, "true", maxAge, "/", "", false, false)
	if user.IsAdmin {
		c.SetCookie(CookieAdmin, "true", maxAge, "/", "", false, false)
	}

	utils.CacheSet("session_user:"+user.Username, user, time.Minute)
	return user, nil
}

// Register 注册，成功后不自动登录，由调用方引导到登录页
func (s *Store) Register(c *gin.Context, username, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.User.Register(username, email, password, c.Request.Cookies())
}

// Logout 登出：后端调用失败也一律清空本地会话，最终总是回到游客态
func (s *Store) Logout(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if su, ok := s.sessionUser(c); ok {
		utils.CacheDelete("session_user:" + su.Username)
	}

	if err := s.repos.User.Logout(c.Request.Cookies()); err != nil {
		log.Printf("[会话] 后端登出失败（本地会话照常清理）: %v", err)
	}

	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Printf("[会话] 清理会话失败: %v", err)
	}

	c.SetCookie(CookieToken, "", -1, "/", "", false, true)
	c.SetCookie(CookieAuth, "", -1, "/", "", false, false)
	c.SetCookie(CookieAdmin, "", -1, "/", "", false, false)
}

// UpdateProfile 更新资料：需要已解析出的用户名，认证状态不变
// 后端返回的字段覆盖本地缓存的用户记录
func (s *Store) UpdateProfile(c *gin.Context, update repository.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	su, ok := s.sessionUser(c)
	if !ok {
		return nil, &repository.APIError{Status: 401, Message: "请先登录"}
	}
	update.Username = su.Username

	user, err := s.repos.User.UpdateProfile(update, c.Request.Cookies())
	if err != nil {
		return nil, err
	}

	// 邮箱等会话内冗余字段同步更新
	su.Email = user.Email
	sess := sessions.Default(c)
	sess.Set(userInfoKey, su)
	if err := sess.Save(); err != nil {
		log.Printf("[会话] 同步会话用户失败: %v", err)
	}

	utils.CacheSet("session_user:"+su.Username, user, time.Minute)
	return user, nil
}

// Username 返回持久化的用户名，游客返回空串
func (s *Store) Username(c *gin.Context) string {
	if su, ok := s.sessionUser(c); ok {
		return su.Username
	}
	return ""
}

// IsAuthenticated 当前请求是否已登录
func (s *Store) IsAuthenticated(c *gin.Context) bool {
	_, ok := s.sessionUser(c)
	return ok
}

func (s *Store) sessionUser(c *gin.Context) (model.SessionUser, bool) {
	sess := sessions.Default(c)
	if userinfo := sess.Get(userInfoKey); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok && su.Username != "" {
			return su, true
		}
	}
	return model.SessionUser{}, false
}
