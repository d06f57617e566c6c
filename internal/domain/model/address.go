package model

import (
	"strings"
	"time"
)

// 配送先住所。注文はこれを参照せず、Format した文字列をコピーして持つ。
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	Recipient string `gorm:"type:varchar(255);not null" json:"recipient"`

	Line1      string `gorm:"type:varchar(255);not null" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	Region     string `gorm:"type:varchar(100)" json:"region"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
	Phone      string `gorm:"type:varchar(30)" json:"phone"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Format は注文に保存する1行表記を作る。空の項目は飛ばす。
func (a Address) Format() string {
	parts := make([]string, 0, 8)
	for _, p := range []string{a.Recipient, a.Line1, a.Line2, a.City, a.Region, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, ", ")
	if phone := strings.TrimSpace(a.Phone); phone != "" {
		s += " (tel: " + phone + ")"
	}
	return s
}
