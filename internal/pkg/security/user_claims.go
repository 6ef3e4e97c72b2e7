package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTSecret         string = "Procura"
	JWTExpirationTime        = time.Hour * 24
)

// UserClaims Token 中携带的业务身份信息。
// 核心组件不读全局登录态，身份经中间件解析后显式下传。
type UserClaims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}
