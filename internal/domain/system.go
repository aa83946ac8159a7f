package domain

import "time"

// SysUser is an operator account. Password holds a bcrypt hash and is never
// serialized.
type SysUser struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:128;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:128" json:"-"`
	Name      string    `gorm:"size:64" json:"name"`
	Status    string    `gorm:"size:16" json:"status"`
	LastLogin time.Time `json:"lastLogin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SysUserLog is an audit row for operator actions.
type SysUserLog struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	UserID   int64     `gorm:"index" json:"userId"`
	Email    string    `gorm:"size:128" json:"email"`
	Action   string    `gorm:"size:32" json:"action"`
	Remark   string    `gorm:"size:512" json:"remark"`
	OptTime  time.Time `gorm:"index" json:"optTime"`
}
