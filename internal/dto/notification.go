package dto

// NotificationQuery binds mailbox listing parameters.
type NotificationQuery struct {
	Unread   bool `form:"unread"`
	Page     int  `form:"page" validate:"omitempty,gte=1"`
	PageSize int  `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// UnreadCount is the badge payload.
type UnreadCount struct {
	Unread int `json:"unread"`
}
