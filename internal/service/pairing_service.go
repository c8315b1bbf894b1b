package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"writequest_app/internal/config"
	"writequest_app/internal/model"
	"writequest_app/internal/store"
	"writequest_app/internal/util"
	"writequest_app/pkg/logger"
	"writequest_app/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 配对码字符集去掉了易混淆的 0/O/1/I
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// SessionRepo 配对会话的持久化能力，由 repository.PairingRepository 实现
type SessionRepo interface {
	Create(session *model.PairingSession) error
	FindByID(id string) (*model.PairingSession, error)
	Revoke(id string, now time.Time) error
	TouchSave(id string, now time.Time) error
	DeleteExpired(now time.Time) (int64, error)
	LogSave(log *model.EditorSaveLog) error
	CountActiveByUser(userID string, now time.Time) (int64, error)
}

// CodeStore 一次性配对码存取。Take 取走即失效。
type CodeStore interface {
	Put(ctx context.Context, code string, payload *PairingPayload, ttl time.Duration) error
	Take(ctx context.Context, code string) (*PairingPayload, error)
}

// PairingPayload 配对码背后绑定的用户与项目
type PairingPayload struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}

// RedisCodeStore 配对码放 Redis，TTL 到期自动消失
type RedisCodeStore struct {
	Client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{Client: client}
}

func (s *RedisCodeStore) key(code string) string {
	return "pairing:code:" + code
}

func (s *RedisCodeStore) Put(ctx context.Context, code string, payload *PairingPayload, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.key(code), data, ttl).Err()
}

// Take GETDEL 保证单次使用，同一码并发认领只会成功一个
func (s *RedisCodeStore) Take(ctx context.Context, code string) (*PairingPayload, error) {
	data, err := s.Client.GetDel(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, util.ErrPairingCodeExpired
	}
	if err != nil {
		return nil, err
	}
	var payload PairingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ProjectSource 编辑器会话初始化需要的远端能力
type ProjectSource interface {
	GetWritingProjects(ctx context.Context, userID string) ([]model.WritingProject, error)
	UpsertWritingProject(ctx context.Context, project *model.WritingProject) error
	DeleteWritingProject(ctx context.Context, id string) error
}

// editorSession 一个已配对的网页编辑器，持有自己的写作状态与后台冲刷
type editorSession struct {
	userID    string
	projectID string
	expiresAt time.Time
	writing   *store.WritingStore
	flusher   *store.Flusher
}

// PairingService 网页伴侣编辑器的配对与保存链路
type PairingService struct {
	Repo   SessionRepo
	Codes  CodeStore
	Source ProjectSource
	Cfg    *config.Config

	mu       sync.Mutex
	sessions map[string]*editorSession
}

func NewPairingService(repo SessionRepo, codes CodeStore, source ProjectSource, cfg *config.Config) *PairingService {
	return &PairingService{
		Repo:     repo,
		Codes:    codes,
		Source:   source,
		Cfg:      cfg,
		sessions: make(map[string]*editorSession),
	}
}

// NormalizeCode 去空格破折号并转大写，格式不对本地即拒绝
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(raw))
	if !codePattern.MatchString(code) {
		return "", util.ErrPairingCodeInvalid
	}
	return code, nil
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeCharset[int(buf[i])%len(codeCharset)]
	}
	return string(buf), nil
}

// IssueCode 为已登录用户的某个项目签发配对码
func (s *PairingService) IssueCode(ctx context.Context, userID, projectID string) (string, time.Time, error) {
	code, err := generateCode()
	if err != nil {
		return "", time.Time{}, err
	}
	ttl := s.Cfg.Pairing.CodeTTL()
	payload := &PairingPayload{UserID: userID, ProjectID: projectID}
	if err := s.Codes.Put(ctx, code, payload, ttl); err != nil {
		return "", time.Time{}, err
	}
	monitoring.PairingCodesIssued.Inc()
	return code, time.Now().Add(ttl), nil
}

// ClaimResult 认领成功后交给编辑器的凭据
type ClaimResult struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ProjectID string    `json:"projectId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claim 用配对码换取编辑器会话令牌。码是单次有效的，
// 格式校验在本地完成，只有合法格式才会触碰存储。
func (s *PairingService) Claim(ctx context.Context, rawCode string) (*ClaimResult, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		monitoring.PairingClaims.WithLabelValues("invalid").Inc()
		return nil, err
	}

	payload, err := s.Codes.Take(ctx, code)
	if err != nil {
		monitoring.PairingClaims.WithLabelValues("expired").Inc()
		return nil, err
	}

	now := time.Now()
	active, err := s.Repo.CountActiveByUser(payload.UserID, now)
	if err != nil {
		return nil, err
	}
	if active >= int64(s.Cfg.Pairing.MaxSessions()) {
		monitoring.PairingClaims.WithLabelValues("limited").Inc()
		return nil, util.ErrSessionLimit
	}

	expiresAt := now.Add(s.Cfg.Pairing.SessionTTL())
	nonce := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(nonce), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	session := &model.PairingSession{
		UserID:    payload.UserID,
		ProjectID: payload.ProjectID,
		TokenHash: string(hash),
		ExpiresAt: expiresAt,
	}
	if err := s.Repo.Create(session); err != nil {
		return nil, err
	}

	token, err := util.GenerateEditorToken(session.ID, payload.UserID, payload.ProjectID, nonce, s.Cfg.JWT.Secret, expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, session.ID, payload.UserID, payload.ProjectID, expiresAt); err != nil {
		return nil, err
	}

	monitoring.PairingClaims.WithLabelValues("ok").Inc()
	logger.Log.Info("编辑器配对成功",
		zap.String("session", session.ID),
		zap.String("user", payload.UserID),
		zap.String("project", payload.ProjectID))

	return &ClaimResult{
		Token:     token,
		SessionID: session.ID,
		ProjectID: payload.ProjectID,
		ExpiresAt: expiresAt,
	}, nil
}

// hydrate 拉取项目内容，为会话建立独立的写作状态与定时冲刷
func (s *PairingService) hydrate(ctx context.Context, sessionID, userID, projectID string, expiresAt time.Time) error {
	projects, err := s.Source.GetWritingProjects(ctx, userID)
	if err != nil {
		return err
	}
	var target *model.WritingProject
	for i := range projects {
		if projects[i].ID == projectID {
			target = &projects[i]
			break
		}
	}
	if target == nil {
		return util.ErrProjectNotFound
	}

	ws := store.NewWritingStore(s.Source, logger.Log)
	ws.SetUser(userID)
	ws.SetProjects([]model.WritingProject{*target})
	if err := ws.SetCurrentProject(projectID); err != nil {
		return err
	}

	flusher := store.NewFlusher(ws, s.Cfg.Sync.FlushInterval(), logger.Log)
	flusher.Start()

	s.mu.Lock()
	s.sessions[sessionID] = &editorSession{
		userID:    userID,
		projectID: projectID,
		expiresAt: expiresAt,
		writing:   ws,
		flusher:   flusher,
	}
	s.mu.Unlock()
	return nil
}

// Authenticate 校验编辑器令牌：签名、会话存在、未撤销未过期、
// 令牌指纹与库里的一致（撤销后重发会换指纹，旧令牌随之失效）。
func (s *PairingService) Authenticate(ctx context.Context, tokenString string) (*util.EditorClaims, error) {
	claims, err := util.ParseEditorToken(tokenString, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	session, err := s.Repo.FindByID(claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active(time.Now()) {
		return nil, util.ErrSessionRevoked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(session.TokenHash), []byte(claims.Nonce)); err != nil {
		return nil, util.ErrSessionRevoked
	}

	s.mu.Lock()
	_, alive := s.sessions[claims.SessionID]
	s.mu.Unlock()
	if !alive {
		// 进程重启后会话行还在，但内存状态没了，重新水合
		if err := s.hydrate(ctx, claims.SessionID, claims.UserID, claims.ProjectID, session.ExpiresAt); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

// Project 会话当前的项目快照
func (s *PairingService) Project(sessionID string) (*model.WritingProject, error) {
	s.mu.Lock()
	es, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	project := es.writing.CurrentProject()
	if project == nil {
		return nil, util.ErrProjectNotFound
	}
	return project, nil
}

// SaveContent 编辑器保存：更新内存状态并记审计日志，落库交给冲刷协程
func (s *PairingService) SaveContent(ctx context.Context, sessionID, content string) (*model.WritingProject, error) {
	s.mu.Lock()
	es, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	if err := es.writing.UpdateContent(content); err != nil {
		return nil, err
	}
	monitoring.EditorSaves.Inc()
	project := es.writing.CurrentProject()

	now := time.Now()
	if err := s.Repo.TouchSave(sessionID, now); err != nil {
		logger.Log.Warn("更新保存时间失败", zap.String("session", sessionID), zap.Error(err))
	}
	if err := s.Repo.LogSave(&model.EditorSaveLog{
		SessionID: sessionID,
		ProjectID: es.projectID,
		WordCount: project.WordCount,
	}); err != nil {
		logger.Log.Warn("保存审计日志写入失败", zap.String("session", sessionID), zap.Error(err))
	}
	return project, nil
}

// Revoke 撤销会话：停掉冲刷（含最后一次落库）并标记数据库行
func (s *PairingService) Revoke(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	es, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		es.flusher.Stop()
	}
	return s.Repo.Revoke(sessionID, time.Now())
}

// ReapExpired 定期清理过期会话：停掉内存会话的冲刷（含最后一次落库）并删数据库行
func (s *PairingService) ReapExpired(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var expired []*editorSession
	for id, es := range s.sessions {
		if now.After(es.expiresAt) {
			expired = append(expired, es)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, es := range expired {
		es.flusher.Stop()
	}

	n, err := s.Repo.DeleteExpired(now)
	if err != nil {
		logger.Log.Error("过期会话清理失败", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Log.Info(fmt.Sprintf("清理过期编辑器会话 %d 个", n))
	}
}

// Close 停掉所有会话的冲刷协程，保证未落库内容写出
func (s *PairingService) Close() {
	s.mu.Lock()
	sessions := make([]*editorSession, 0, len(s.sessions))
	for _, es := range s.sessions {
		sessions = append(sessions, es)
	}
	s.sessions = make(map[string]*editorSession)
	s.mu.Unlock()

	for _, es := range sessions {
		es.flusher.Stop()
	}
}
