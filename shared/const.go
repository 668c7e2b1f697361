package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleUser  = "user"
	RoleAdmin = "admin"

	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

const (
	// Code space: six decimal digits, zero padded on the wire.
	CodeMin   = 0
	CodeMax   = 999999
	CodeWidth = 6
)
