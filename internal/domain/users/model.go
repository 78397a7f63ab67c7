package users

import "time"

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID          int64
	TelegramID  int64
	Username    string
	FirstName   string
	Role        Role
	WelcomeSeen bool
	CreatedAt   time.Time
}

type Telegram struct {
	ID        int64
	Username  string
	FirstName string
}
