package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 路由守卫读取的标记 Cookie 与签名声明 Cookie
const (
	cookieAuth  = "auth"
	cookieAdmin = "is_admin"
	cookieToken = "token"
)

// Claims JWT 声明，登录成功后由本服务根据后端响应签发
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// RequireAuth 必须登录中间件
// 只看 auth 标记 Cookie，未登录重定向到登录页并带上回跳地址
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(cookieAuth); err != nil || v != "true" {
			c.Redirect(http.StatusFound, "/login?redirect="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin 管理后台守卫
// 路径与两个标记 Cookie 的纯函数：任一缺失或非 true 即重定向到站点根
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, errA := c.Cookie(cookieAuth)
		admin, errB := c.Cookie(cookieAdmin)
		if errA != nil || errB != nil || auth != "true" || admin != "true" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminClaims 校验签名声明
// 标记 Cookie 可以被浏览器端随意伪造，真正的权限以签发的声明为准
func RequireAdminClaims(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c, jwtSecret)
		if err != nil || !claims.IsAdmin {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Set("is_admin", claims.IsAdmin)
		c.Next()
	}
}

// extractClaims 从 Cookie 中提取 JWT Claims
func extractClaims(c *gin.Context, jwtSecret string) (*Claims, error) {
	tokenString, err := c.Cookie(cookieToken)
	if err != nil || tokenString == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// GetUsername 从上下文获取声明中的用户名（未设置返回空串）
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		return username.(string)
	}
	return ""
}

// GenerateToken 生成 JWT Token
func GenerateToken(username string, isAdmin bool, jwtSecret string, expiry time.Duration) (string, error) {
	claims := &Claims{
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
