package dto

type LikeResponse struct {
	Liked      bool   `json:"liked"`
	LikesCount int64  `json:"likes_count"`
	Detail     string `json:"detail"`
}
