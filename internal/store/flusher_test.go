package store

import (
	"testing"
	"time"
	"writequest_app/internal/model"
)

func TestFlusherPushesDirtyProjects(t *testing.T) {
	remote := &fakeProjectRemote{}
	s := NewWritingStore(remote, nil)
	if _, err := s.CreateProject("Background", model.GenreStory); err != nil {
		t.Fatalf("create: %v", err)
	}

	f := NewFlusher(s, 10*time.Millisecond, nil)
	f.Start()

	deadline := time.Now().Add(2 * time.Second)
	for s.HasDirty() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	f.Stop()

	if s.HasDirty() {
		t.Fatal("flusher did not push the dirty project in time")
	}
	if len(remote.upserts) == 0 {
		t.Fatal("no remote upsert recorded")
	}
}

func TestFlusherStopFlushesPending(t *testing.T) {
	remote := &fakeProjectRemote{}
	s := NewWritingStore(remote, nil)
	if _, err := s.CreateProject("Last Words", model.GenreEssay); err != nil {
		t.Fatalf("create: %v", err)
	}

	// 间隔远大于测试时长，只有 Stop 前的最后一次冲刷能写出
	f := NewFlusher(s, time.Hour, nil)
	f.Start()
	f.Stop()

	if s.HasDirty() {
		t.Error("Stop must flush pending changes before returning")
	}
	if len(remote.upserts) != 1 {
		t.Errorf("got %d upserts, want 1", len(remote.upserts))
	}
}
