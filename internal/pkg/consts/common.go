package consts

const (
	DefaultAvatarURL = "default_avatar.png"

	// DefaultInitials 参与者名字缺失时的展示占位
	DefaultInitials = "??"
)
