package domain

// User 当前已认证的用户，即笔记的 Owner
type User struct {
	ID       string
	Nickname string
}
