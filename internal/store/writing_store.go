package store

import (
	"context"
	"strings"
	"sync"
	"time"
	"writequest_app/internal/model"
	"writequest_app/internal/util"

	"go.uber.org/zap"
)

// WritingStore 写作项目的内存状态。内容编辑只改本地并打脏标记，
// 远端落库由 Flusher 按固定间隔批量推送，避免逐键写放大。
// 不变式：最多一个“当前”项目；无当前项目时 UpdateContent 直接拒绝。
type WritingStore struct {
	mu        sync.Mutex
	userID    string
	projects  []model.WritingProject
	currentID string
	focusMode bool
	dirty     map[string]bool

	remote ProjectRemote
	log    *zap.Logger
}

func NewWritingStore(remote ProjectRemote, log *zap.Logger) *WritingStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &WritingStore{
		remote: remote,
		log:    log,
		dirty:  make(map[string]bool),
	}
}

func (s *WritingStore) SetUser(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

// SetProjects 登录加载时整体替换项目列表
func (s *WritingStore) SetProjects(projects []model.WritingProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append([]model.WritingProject(nil), projects...)
	s.currentID = ""
	s.dirty = make(map[string]bool)
}

// Clear 登出时清空，不触发任何远端调用
func (s *WritingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = nil
	s.currentID = ""
	s.focusMode = false
	s.userID = ""
	s.dirty = make(map[string]bool)
}

// CreateProject 新建空项目并设为当前；空标题在本地即拒绝
func (s *WritingStore) CreateProject(title string, genre model.Genre) (*model.WritingProject, error) {
	if strings.TrimSpace(title) == "" {
		return nil, util.ErrEmptyTitle
	}
	if !genre.Valid() {
		return nil, util.ErrInvalidGenre
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project := model.WritingProject{
		ID:           model.GenerateUUID(),
		UserID:       s.userID,
		Title:        strings.TrimSpace(title),
		Genre:        genre,
		Content:      "",
		WordCount:    0,
		DateModified: time.Now(),
	}
	s.projects = append(s.projects, project)
	s.currentID = project.ID
	s.dirty[project.ID] = true

	cp := project
	return &cp, nil
}

// UpdateContent 改写当前项目内容，字数随内容重算
func (s *WritingStore) UpdateContent(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(s.currentID)
	if idx < 0 {
		return util.ErrNoCurrentProject
	}

	s.projects[idx].Content = content
	s.projects[idx].WordCount = util.CountWords(content)
	s.projects[idx].DateModified = time.Now()
	s.dirty[s.currentID] = true
	return nil
}

func (s *WritingStore) SetCurrentProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfLocked(id) < 0 {
		return util.ErrProjectNotFound
	}
	s.currentID = id
	return nil
}

func (s *WritingStore) ClearCurrentProject() {
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()
}

// CurrentProject 当前项目的副本，无当前项目返回 nil
func (s *WritingStore) CurrentProject() *model.WritingProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(s.currentID)
	if idx < 0 {
		return nil
	}
	cp := s.projects[idx]
	return &cp
}

func (s *WritingStore) Projects() []model.WritingProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WritingProject(nil), s.projects...)
}

// DeleteProject 本地先删，再发远端删除；破坏性确认由调用方负责
func (s *WritingStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return util.ErrProjectNotFound
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	delete(s.dirty, id)
	s.mu.Unlock()

	if err := s.remote.DeleteWritingProject(ctx, id); err != nil {
		s.log.Error("remote project delete failed", zap.String("project", id), zap.Error(err))
		return err
	}
	return nil
}

// ToggleFocusMode 纯本地UI标志
func (s *WritingStore) ToggleFocusMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusMode = !s.focusMode
	return s.focusMode
}

func (s *WritingStore) FocusMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusMode
}

func (s *WritingStore) HasDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0
}

// FlushDirty 推送所有脏项目，失败的重新标脏等下一轮
func (s *WritingStore) FlushDirty(ctx context.Context) error {
	s.mu.Lock()
	var pending []model.WritingProject
	for id := range s.dirty {
		if idx := s.indexOfLocked(id); idx >= 0 {
			pending = append(pending, s.projects[idx])
		}
	}
	s.dirty = make(map[string]bool)
	s.mu.Unlock()

	var firstErr error
	for i := range pending {
		p := pending[i]
		if err := s.remote.UpsertWritingProject(ctx, &p); err != nil {
			s.log.Error("project flush failed, will retry", zap.String("project", p.ID), zap.Error(err))
			s.mu.Lock()
			s.dirty[p.ID] = true
			s.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *WritingStore) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}
