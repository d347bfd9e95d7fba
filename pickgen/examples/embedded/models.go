package embedded

import "time"

// BaseModel 基础模型
type BaseModel struct {
	ID        uint64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

// Employee 员工模型
// 嵌入字段按类型名作为一个成员，不展开
// @Pick(EmployeeBasic {BaseModel, Name, Department})
// @Omit(EmployeePublic {Salary, SSN})
type Employee struct {
	BaseModel
	Name       string  `json:"name" gorm:"column:name;size:100"`
	Email      string  `json:"email" gorm:"column:email;uniqueIndex"`
	Department string  `json:"department" gorm:"column:department;size:50"`
	Salary     float64 `json:"-" gorm:"column:salary"`
	SSN        string  `json:"-" gorm:"column:ssn"`
}

// Page 泛型分页
// @Pick(PageItems[T any] {Items})
// @Omit(PageMeta {Items})
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Size  int `json:"size"`
}
