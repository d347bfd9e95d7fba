package basic

import "time"

// User 用户模型
// @Pick(UserBasic {ID, Name, Email})
// @Derive(Setter)
// @Pick(UserProfile {ID, Name, Email, CreatedAt, UpdatedAt})
type User struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;size:100"`
	Email     string    `json:"email" gorm:"column:email;uniqueIndex"`
	Password  string    `json:"-" gorm:"column:password"`
	Salt      string    `json:"-" gorm:"column:salt"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Article 文章模型
// @Omit(ArticlePublic {DeletedAt, AuthorID})
// @Omit(unexport articlePreview {Content, DeletedAt, AuthorID})
type Article struct {
	ID        uint64     `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"column:title;size:255"`
	Content   string     `json:"content" gorm:"column:content;type:text"`
	AuthorID  uint64     `json:"author_id" gorm:"column:author_id;index"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

// Product 产品模型
// @Pick(ProductSummary {ID, Name, unexport Price})
// @Omit(ProductDetail {InternalCode, CostPrice})
type Product struct {
	ID           uint64  `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"column:name;size:200"`
	Description  string  `json:"description" gorm:"column:description;type:text"`
	Price        float64 `json:"price" gorm:"column:price"`
	CostPrice    float64 `json:"-" gorm:"column:cost_price"`
	Stock        int     `json:"stock" gorm:"column:stock"`
	InternalCode string  `json:"-" gorm:"column:internal_code"`
}
