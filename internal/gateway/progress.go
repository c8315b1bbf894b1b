package gateway

import (
	"context"
	"net/http"
	"net/url"
	"writequest_app/internal/model"
	"writequest_app/internal/util"
)

// progressRow user_progress 表的一行，嵌入 Progress 使列名与 JSON 标签一致
type progressRow struct {
	UserID string `json:"user_id"`
	model.Progress
}

// GetProgress 无记录返回 ErrNotFound（按“使用默认值”处理，非硬错误）
func (c *Client) GetProgress(ctx context.Context, userID string) (*model.Progress, error) {
	var rows []progressRow
	u := c.restPrefix + "/user_progress?user_id=eq." + url.QueryEscape(userID) + "&limit=1"
	if err := c.doJSON(ctx, http.MethodGet, u, nil, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.ErrNotFound
	}
	p := rows[0].Progress
	return &p, nil
}

// UpsertProgress 进度整行覆盖写入
func (c *Client) UpsertProgress(ctx context.Context, userID string, progress *model.Progress) error {
	row := progressRow{UserID: userID, Progress: *progress}
	headers := map[string]string{
		"Prefer": "resolution=merge-duplicates",
	}
	u := c.restPrefix + "/user_progress?on_conflict=user_id"
	return c.doJSON(ctx, http.MethodPost, u, headers, row, nil)
}
