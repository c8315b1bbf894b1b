package store

import (
	"context"
	"fmt"
	"testing"
	"writequest_app/internal/model"
)

type fakeLeaderboardRemote struct {
	profiles []model.UserProfile
	calls    int
}

func (f *fakeLeaderboardRemote) GetLeaderboardRanking(ctx context.Context, page, pageSize int) ([]model.UserProfile, int, error) {
	f.calls++
	start := page * pageSize
	if start > len(f.profiles) {
		return nil, len(f.profiles), nil
	}
	end := start + pageSize
	if end > len(f.profiles) {
		end = len(f.profiles)
	}
	return append([]model.UserProfile(nil), f.profiles[start:end]...), len(f.profiles), nil
}

func rankedProfiles(n int) []model.UserProfile {
	profiles := make([]model.UserProfile, n)
	for i := range profiles {
		profiles[i] = model.UserProfile{
			UserID:   fmt.Sprintf("user-%d", i),
			Username: fmt.Sprintf("writer%d", i),
			XP:       1000 - i,
		}
	}
	return profiles
}

func TestLeaderboardLoadMorePaginates(t *testing.T) {
	remote := &fakeLeaderboardRemote{profiles: rankedProfiles(45)}
	feed := NewLeaderboardFeed(remote, 20, nil)

	ctx := context.Background()
	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("first page: %v", err)
	}
	if got := len(feed.Entries()); got != 20 {
		t.Fatalf("after first page got %d entries, want 20", got)
	}
	if feed.Total() != 45 {
		t.Errorf("total = %d, want 45", feed.Total())
	}
	if !feed.HasMore() {
		t.Error("expected more pages after loading 20 of 45")
	}

	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("second page: %v", err)
	}
	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("third page: %v", err)
	}

	entries := feed.Entries()
	if len(entries) != 45 {
		t.Fatalf("got %d entries, want 45", len(entries))
	}
	if entries[0].Rank != 1 || entries[44].Rank != 45 {
		t.Errorf("ranks not contiguous: first=%d last=%d", entries[0].Rank, entries[44].Rank)
	}
	if feed.HasMore() {
		t.Error("all rows loaded, HasMore should be false")
	}
}

func TestLeaderboardLoadMoreStopsWhenComplete(t *testing.T) {
	remote := &fakeLeaderboardRemote{profiles: rankedProfiles(5)}
	feed := NewLeaderboardFeed(remote, 20, nil)

	ctx := context.Background()
	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	callsAfterFirst := remote.calls

	// 全量已加载，后续 LoadMore 不应再发请求
	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("redundant load: %v", err)
	}
	if remote.calls != callsAfterFirst {
		t.Errorf("LoadMore fetched again after full load: %d calls", remote.calls)
	}
}

func TestLeaderboardRefresh(t *testing.T) {
	remote := &fakeLeaderboardRemote{profiles: rankedProfiles(3)}
	feed := NewLeaderboardFeed(remote, 20, nil)

	ctx := context.Background()
	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	remote.profiles = rankedProfiles(4)
	if err := feed.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := len(feed.Entries()); got != 4 {
		t.Errorf("after refresh got %d entries, want 4", got)
	}
}
