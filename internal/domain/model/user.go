package model

type User struct {
	UserID    uint    `gorm:"primaryKey" json:"user_id"`
	UserName  string  `gorm:"not null;type:varchar(100)" json:"user_name"`
	UserEmail string  `gorm:"unique;not null;type:varchar(100)" json:"user_email"`
	Points    int     `gorm:"not null;default:0" json:"points"`
	IsAdmin   bool    `gorm:"not null;default:false" json:"is_admin"`
	Orders    []Order `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}

// PointsTransaction 點數異動紀錄, 每次加點都要留 reason
type PointsTransaction struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Points int    `gorm:"not null" json:"points"`
	Reason string `gorm:"not null;type:varchar(255)" json:"reason"`
	BaseModel
}
