package identity

import (
	"Procura/internal/api/config"
	"Procura/internal/chat"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Client 调用上游身份服务，拉取账号的展示信息。
// 会话参与者快照里的名称与头像以这里返回的为准。
type Client interface {
	GetIdentity(ctx context.Context, userID string) (*chat.Identity, error)
}

type profileResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"data"`
}

type ClientImpl struct {
	httpClient *resty.Client
}

func NewClient(cfg config.IdentityConfig) Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("X-Api-Key", cfg.APIKey)

	return &ClientImpl{httpClient: client}
}

func (s *ClientImpl) GetIdentity(ctx context.Context, userID string) (*chat.Identity, error) {
	result := &profileResponse{}
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetResult(result).
		Get("/v1/accounts/{id}/profile")
	if err != nil {
		return nil, errors.Wrap(err, "请求身份服务失败")
	}
	if resp.IsError() || result.Code != 200 {
		return nil, fmt.Errorf("身份服务返回异常: status=%d code=%d", resp.StatusCode(), result.Code)
	}

	return &chat.Identity{
		ID:        result.Data.ID,
		Name:      result.Data.Name,
		AvatarURL: result.Data.AvatarURL,
	}, nil
}
