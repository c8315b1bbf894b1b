// Package gateway 远端数据网关：托管后端（GoTrue 认证 + PostgREST 数据表）的类型化门面。
// 所有持久化格式归后端所有，这里只消费其请求/响应契约。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"writequest_app/internal/config"
	"writequest_app/internal/util"
)

type Client struct {
	cfg        config.SupabaseConfig
	http       *http.Client
	restPrefix string
	authPrefix string
	apiKey     string

	mu          sync.RWMutex
	accessToken string
}

// New 匿名密钥客户端，移动端引擎以登录用户身份访问（受RLS约束）
func New(cfg config.SupabaseConfig) (*Client, error) {
	return newClient(cfg, cfg.AnonKey)
}

// NewService 服务密钥客户端，伴侣编辑器服务端使用
func NewService(cfg config.SupabaseConfig) (*Client, error) {
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase service key is required")
	}
	return newClient(cfg, cfg.ServiceKey)
}

func newClient(cfg config.SupabaseConfig, apiKey string) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("supabase project URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase api key is required")
	}

	trimmed := strings.TrimRight(cfg.ProjectURL, "/")
	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: 15 * time.Second},
		restPrefix: trimmed + "/rest/v1",
		authPrefix: trimmed + "/auth/v1",
		apiKey:     apiKey,
	}, nil
}

// SetAccessToken 登录后由会话协调器注入用户令牌，后续数据表请求以该用户身份执行
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) ClearAccessToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.apiKey
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do 发起请求并做状态分类，调用方负责关闭响应体
func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, body interface{}) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, classifyStatus(resp.StatusCode, detail)
	}
	return resp, nil
}

// doJSON 请求并解码响应，out 为 nil 时丢弃响应体
func (c *Client) doJSON(ctx context.Context, method, rawURL string, headers map[string]string, body, out interface{}) error {
	resp, err := c.do(ctx, method, rawURL, headers, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", rawURL, err)
	}
	return nil
}

func decodeBody(r io.Reader, out interface{}) error {
	return json.NewDecoder(r).Decode(out)
}

// statusError 保留原始状态码，同时通过 Unwrap 映射到统一错误分类
type statusError struct {
	status   int
	detail   string
	sentinel error
}

func (e *statusError) Error() string {
	if e.sentinel != nil {
		return fmt.Sprintf("%v (status %d): %s", e.sentinel, e.status, e.detail)
	}
	return fmt.Sprintf("backend rejected request (status %d): %s", e.status, e.detail)
}

func (e *statusError) Unwrap() error { return e.sentinel }

func classifyStatus(status int, detail []byte) error {
	e := &statusError{status: status, detail: strings.TrimSpace(string(detail))}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.sentinel = util.ErrAuthFailed
	case http.StatusNotFound, http.StatusNotAcceptable:
		e.sentinel = util.ErrNotFound
	}
	return e
}

// parseContentRange 解析 PostgREST 的 Content-Range，如 "0-19/45" 或 "*/0"
func parseContentRange(v string) (int, error) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 {
		return 0, fmt.Errorf("malformed Content-Range: %q", v)
	}
	total, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range total: %q", v)
	}
	return total, nil
}
