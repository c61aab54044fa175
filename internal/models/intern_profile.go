package models

// InternProfile extends an INTERN account. The account id is the primary key.
type InternProfile struct {
	UserID     uint64 `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	Department string `gorm:"type:varchar(100);not null" json:"department"`
	Status     string `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	Progress   int    `gorm:"not null;default:0" json:"progress"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
