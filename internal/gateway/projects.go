package gateway

import (
	"context"
	"net/http"
	"net/url"
	"writequest_app/internal/model"
)

// GetWritingProjects 按最近修改排序返回用户的全部写作项目
func (c *Client) GetWritingProjects(ctx context.Context, userID string) ([]model.WritingProject, error) {
	var rows []model.WritingProject
	u := c.restPrefix + "/writing_projects?user_id=eq." + url.QueryEscape(userID) +
		"&order=date_modified.desc"
	if err := c.doJSON(ctx, http.MethodGet, u, nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertWritingProject 定时落库走这里，同一项目ID覆盖写
func (c *Client) UpsertWritingProject(ctx context.Context, project *model.WritingProject) error {
	headers := map[string]string{
		"Prefer": "resolution=merge-duplicates",
	}
	u := c.restPrefix + "/writing_projects?on_conflict=id"
	return c.doJSON(ctx, http.MethodPost, u, headers, project, nil)
}

// DeleteWritingProject 删除不存在的行不报错，与本地先行删除的语义一致
func (c *Client) DeleteWritingProject(ctx context.Context, id string) error {
	u := c.restPrefix + "/writing_projects?id=eq." + url.QueryEscape(id)
	return c.doJSON(ctx, http.MethodDelete, u, nil, nil, nil)
}
