package test

import (
	"errors"

	"github.com/ecodeclub/ginx/gctx"
	"github.com/ecodeclub/ginx/session"
)

// 注册测试用的session提供者, 直接读中间件预置在gin上下文里的session
func init() {
	session.SetDefaultProvider(&SessionProvider{})
}

type SessionProvider struct {
}

func (s *SessionProvider) NewSession(ctx *gctx.Context, uid int64, jwtData map[string]string, sessData map[string]any) (session.Session, error) {
	return nil, errors.New("测试环境不签发session, 请用中间件预置 _session")
}

func (s *SessionProvider) Get(ctx *gctx.Context) (session.Session, error) {
	val, ok := ctx.Get("_session")
	if !ok {
		return nil, errors.New("测试上下文里没有预置 _session")
	}
	sess, ok := val.(session.Session)
	if !ok {
		return nil, errors.New("_session 不是 session.Session")
	}
	return sess, nil
}

func (s *SessionProvider) Destroy(ctx *gctx.Context) error {
	return errors.New("测试环境不支持销毁 session")
}

func (s *SessionProvider) UpdateClaims(ctx *gctx.Context, claims session.Claims) error {
	return errors.New("测试环境不支持更新 claims")
}

func (s *SessionProvider) RenewAccessToken(ctx *gctx.Context) error {
	return errors.New("测试环境不支持刷新 access token")
}
