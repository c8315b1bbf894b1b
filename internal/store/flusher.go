package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Flusher 周期性把写作内容的脏状态推到远端。
// 间隔由配置决定，默认30秒。Stop 前会做最后一次冲刷。
type Flusher struct {
	store    *WritingStore
	interval time.Duration
	log      *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewFlusher(store *WritingStore, interval time.Duration, log *zap.Logger) *Flusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Flusher{
		store:    store,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start 启动后台冲刷协程
func (f *Flusher) Start() {
	go func() {
		defer close(f.doneCh)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				f.flushOnce()
			case <-f.stopCh:
				f.flushOnce()
				return
			}
		}
	}()
}

// Stop 停止并等待最后一次冲刷完成
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() {
		close(f.stopCh)
	})
	<-f.doneCh
}

func (f *Flusher) flushOnce() {
	if !f.store.HasDirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := f.store.FlushDirty(ctx); err != nil {
		f.log.Warn("background flush incomplete", zap.Error(err))
	}
}
