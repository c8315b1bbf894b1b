// Package session 管理认证会话与登录后的并行数据加载。
package session

import (
	"context"
	"errors"
	"sync"
	"writequest_app/internal/model"
	"writequest_app/internal/store"
	"writequest_app/internal/util"

	"go.uber.org/zap"
)

// State 会话状态机
type State int

const (
	StateSignedOut State = iota
	StateAuthenticating
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateSignedIn:
		return "signed_in"
	default:
		return "signed_out"
	}
}

// Remote 会话生命周期需要的远端能力
type Remote interface {
	Authenticate(ctx context.Context, email, password string) (*model.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error)
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	CreateOrUpdateUserProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error)
	GetProgress(ctx context.Context, userID string) (*model.Progress, error)
	GetWritingProjects(ctx context.Context, userID string) ([]model.WritingProject, error)
	SetAccessToken(token string)
	ClearAccessToken()
}

// Coordinator 串起认证、令牌持有与各 store 的填充/清空。
// 登录成功后三路数据并行加载；任一路失败登录整体失败并回退到未登录。
type Coordinator struct {
	mu      sync.Mutex
	state   State
	session *model.Session
	profile *model.UserProfile

	remote   Remote
	progress *store.ProgressStore
	writing  *store.WritingStore
	log      *zap.Logger
	onState  func(State)
}

func NewCoordinator(remote Remote, progress *store.ProgressStore, writing *store.WritingStore, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		state:    StateSignedOut,
		remote:   remote,
		progress: progress,
		writing:  writing,
		log:      log,
	}
}

// SetStateListener 注册状态变化回调，供壳层刷新界面；回调在持锁外调用
func (c *Coordinator) SetStateListener(fn func(State)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session 当前会话副本，未登录返回 nil
func (c *Coordinator) Session() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

func (c *Coordinator) Profile() *model.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil
	}
	cp := *c.profile
	return &cp
}

// SignIn 密码登录。认证通过后并行加载档案、进度、写作项目，
// 任一路失败则清掉令牌回到未登录，不留半成品状态。
func (c *Coordinator) SignIn(ctx context.Context, email, password string) error {
	c.mu.Lock()
	if c.state != StateSignedOut {
		c.mu.Unlock()
		return errors.New("登录状态异常，请先退出")
	}
	c.state = StateAuthenticating
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(StateAuthenticating)
	}

	sess, err := c.remote.Authenticate(ctx, email, password)
	if err != nil {
		c.setState(StateSignedOut)
		return err
	}
	c.remote.SetAccessToken(sess.AccessToken)

	if err := c.loadUserData(ctx, &sess.User, email); err != nil {
		c.remote.ClearAccessToken()
		c.setState(StateSignedOut)
		return err
	}

	c.mu.Lock()
	c.session = sess
	c.state = StateSignedIn
	fn = c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(StateSignedIn)
	}
	c.log.Info("用户登录成功", zap.String("user", sess.User.ID))
	return nil
}

// Resume 冷启动时用持久化的 refresh token 恢复会话
func (c *Coordinator) Resume(ctx context.Context, refreshToken string) error {
	c.mu.Lock()
	if c.state != StateSignedOut {
		c.mu.Unlock()
		return errors.New("登录状态异常，请先退出")
	}
	c.state = StateAuthenticating
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(StateAuthenticating)
	}

	sess, err := c.remote.RefreshSession(ctx, refreshToken)
	if err != nil {
		c.setState(StateSignedOut)
		return err
	}
	c.remote.SetAccessToken(sess.AccessToken)

	if err := c.loadUserData(ctx, &sess.User, sess.User.Email); err != nil {
		c.remote.ClearAccessToken()
		c.setState(StateSignedOut)
		return err
	}

	c.mu.Lock()
	c.session = sess
	c.state = StateSignedIn
	fn = c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(StateSignedIn)
	}
	return nil
}

// Refresh 已登录状态下换新令牌，不重新加载数据
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateSignedIn || c.session == nil {
		c.mu.Unlock()
		return util.ErrAuthFailed
	}
	token := c.session.RefreshToken
	c.mu.Unlock()

	sess, err := c.remote.RefreshSession(ctx, token)
	if err != nil {
		return err
	}
	c.remote.SetAccessToken(sess.AccessToken)

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	return nil
}

// SignOut 无条件清空本地状态，不做任何网络调用。
// 未同步的离线改动随重置一起丢弃，登出必须在离线时也能立即完成。
func (c *Coordinator) SignOut(ctx context.Context) {
	if c.progress.HasOfflineChanges() {
		c.log.Warn("登出时存在未同步的进度改动，将被丢弃")
	}
	c.remote.ClearAccessToken()

	c.mu.Lock()
	c.session = nil
	c.profile = nil
	c.state = StateSignedOut
	fn := c.onState
	c.mu.Unlock()

	c.progress.SetUser("")
	c.progress.ResetProgress()
	c.writing.Clear()
	if fn != nil {
		fn(StateSignedOut)
	}
}

// loadUserData 三路并行：档案、进度、写作项目。
// 档案/进度不存在视为新用户，用默认值落一份。
func (c *Coordinator) loadUserData(ctx context.Context, user *model.AuthUser, email string) error {
	c.progress.SetUser(user.ID)
	c.writing.SetUser(user.ID)

	var (
		wg                                 sync.WaitGroup
		profileErr, progressErr, projErr   error
		profile                            *model.UserProfile
		progress                           *model.Progress
		projects                           []model.WritingProject
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		profile, profileErr = c.remote.GetUserProfile(ctx, user.ID)
		if errors.Is(profileErr, util.ErrNotFound) {
			profile, profileErr = c.remote.CreateOrUpdateUserProfile(ctx, &model.UserProfile{
				UserID:   user.ID,
				Username: util.UsernameFromEmail(email),
				Level:    1,
			})
		}
	}()
	go func() {
		defer wg.Done()
		progress, progressErr = c.remote.GetProgress(ctx, user.ID)
		if errors.Is(progressErr, util.ErrNotFound) {
			progress, progressErr = nil, nil
		}
	}()
	go func() {
		defer wg.Done()
		projects, projErr = c.remote.GetWritingProjects(ctx, user.ID)
	}()
	wg.Wait()

	for _, err := range []error{profileErr, progressErr, projErr} {
		if err != nil {
			c.log.Error("登录数据加载失败", zap.String("user", user.ID), zap.Error(err))
			return err
		}
	}

	if progress != nil {
		c.progress.SetProgress(progress)
	} else {
		c.progress.ResetProgress()
	}
	c.writing.SetProjects(projects)

	c.mu.Lock()
	c.profile = profile
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
