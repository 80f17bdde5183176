package models

// Post represents a published blog article
type Post struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	Slug      string `json:"slug" bson:"slug"`
	Title     string `json:"title" bson:"title"`
	Content   string `json:"content" bson:"content"`
	Thumbnail string `json:"thumbnail_url,omitempty" bson:"thumbnail_url"`
	Category  string `json:"category,omitempty" bson:"category"`
	Views     int64  `json:"views" bson:"views"`
	AuthorID  UserID `json:"author_id" bson:"author_id"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
	UpdatedAt int64  `json:"updated_at" bson:"updated_at"`
}
