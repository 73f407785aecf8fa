package dto

type CreateBlogDTO struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Content     string   `json:"content" binding:"required"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
}

type UpdateBlogDTO struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Image       *string   `json:"image"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	Published   *bool     `json:"published"`
}
