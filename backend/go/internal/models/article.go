package models

import (
	"strings"
	"time"
)

// Article 表示一条抓取到的新闻，同时也是关系库 news 表的一行。
type Article struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Title       string    `gorm:"type:text" json:"title"`
	Link        string    `gorm:"type:text;index" json:"link"`                     // 文章链接，近似唯一的标识
	Date        time.Time `gorm:"index" json:"date"`                               // 发布时间
	Description string    `gorm:"type:text" json:"description"`                    // 摘要或正文片段
	Source      string    `gorm:"type:varchar(255)" json:"source"`                 // 来源站点名称
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at,omitempty"` // 入库时间
}

// TableName 固定表名，与既有的 news 表保持一致。
func (Article) TableName() string {
	return "news"
}

// Valid 检查文章是否具备进入流水线的最少字段。
func (a *Article) Valid() bool {
	return a != nil && strings.TrimSpace(a.Link) != "" && strings.TrimSpace(a.Title) != ""
}
