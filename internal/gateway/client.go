package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

// versionConflictMarker is the message fragment the upstream uses when an
// update carries a stale version.
const versionConflictMarker = "VERSION_CONFLICT"

type Client struct {
	gql    *graphql.Client
	logger *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	gql := graphql.NewClient(endpoint, graphql.WithHTTPClient(&http.Client{Timeout: timeout}))
	gql.Log = func(s string) {
		logger.Debug("graphql", zap.String("message", s))
	}

	return &Client{gql: gql, logger: logger}
}

type tokenKey struct{}

// WithToken attaches the upstream session token to ctx; every call made with
// the returned context is authenticated with it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func (c *Client) run(ctx context.Context, operation, query string, vars map[string]interface{}, resp interface{}) error {
	req := graphql.NewRequest(query)
	for key, value := range vars {
		req.Var(key, value)
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, resp)
	if err != nil {
		c.logger.Warn("Gateway call failed",
			zap.String("operation", operation),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return &custom_error.GatewayError{Operation: operation, Err: err}
	}

	c.logger.Debug("Gateway call", zap.String("operation", operation), zap.Duration("latency", time.Since(start)))
	return nil
}

func isVersionConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), versionConflictMarker)
}

const loginMutation = `
mutation Login($usuario: String!, $contrasenna: String!) {
  login(usuario: $usuario, contrasenna: $contrasenna) {
    id
    usuario
    token
  }
}`

func (c *Client) Login(ctx context.Context, usuario, contrasenna string) (*models.LoginResult, error) {
	var resp struct {
		Login *models.LoginResult `json:"login"`
	}
	vars := map[string]interface{}{"usuario": usuario, "contrasenna": contrasenna}
	if err := c.run(ctx, "login", loginMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Login == nil || resp.Login.Token == "" {
		return nil, custom_error.ErrNotFound
	}

	return resp.Login, nil
}
