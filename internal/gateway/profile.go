package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"writequest_app/internal/model"
	"writequest_app/internal/util"
)

const profileColumns = "user_id,username,display_name,avatar_url,level,xp"

// GetUserProfile 无记录返回 ErrNotFound，由调用方决定是否创建默认档案
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var rows []model.UserProfile
	u := c.restPrefix + "/user_profiles?select=" + profileColumns +
		"&user_id=eq." + url.QueryEscape(userID) + "&limit=1"
	if err := c.doJSON(ctx, http.MethodGet, u, nil, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.ErrNotFound
	}
	return &rows[0], nil
}

// CreateOrUpdateUserProfile PostgREST upsert，返回合并后的档案
func (c *Client) CreateOrUpdateUserProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	var rows []model.UserProfile
	headers := map[string]string{
		"Prefer": "resolution=merge-duplicates,return=representation",
	}
	u := c.restPrefix + "/user_profiles?on_conflict=user_id&select=" + profileColumns
	if err := c.doJSON(ctx, http.MethodPost, u, headers, profile, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile upsert returned no representation")
	}
	return &rows[0], nil
}

// GetLeaderboardRanking 按XP降序取第 page 页（从0开始），总数取自 Content-Range
func (c *Client) GetLeaderboardRanking(ctx context.Context, page, pageSize int) ([]model.UserProfile, int, error) {
	if page < 0 || pageSize <= 0 {
		return nil, 0, fmt.Errorf("invalid leaderboard page %d/%d", page, pageSize)
	}

	from := page * pageSize
	headers := map[string]string{
		"Range-Unit": "items",
		"Range":      fmt.Sprintf("%d-%d", from, from+pageSize-1),
		"Prefer":     "count=exact",
	}
	// user_id 参与排序保证同分时分页稳定
	u := c.restPrefix + "/user_profiles?select=" + profileColumns + "&order=xp.desc,user_id.asc"

	resp, err := c.do(ctx, http.MethodGet, u, headers, nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var rows []model.UserProfile
	if err := decodeBody(resp.Body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode leaderboard page: %w", err)
	}

	total, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetUserRank 名次 = 比该用户XP高的档案数 + 1
func (c *Client) GetUserRank(ctx context.Context, userID string) (int, error) {
	profile, err := c.GetUserProfile(ctx, userID)
	if err != nil {
		return 0, err
	}

	headers := map[string]string{
		"Range-Unit": "items",
		"Range":      "0-0",
		"Prefer":     "count=exact",
	}
	u := c.restPrefix + "/user_profiles?select=user_id&xp=gt." + strconv.Itoa(profile.XP)

	resp, err := c.do(ctx, http.MethodGet, u, headers, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	ahead, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, err
	}
	return ahead + 1, nil
}
