package dto

type PortalStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalNews     int64 `json:"total_news"`
	TotalComments int64 `json:"total_comments"`
	TotalLikes    int64 `json:"total_likes"`
	TotalViews    int64 `json:"total_views"`
}

type TrendingQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}
