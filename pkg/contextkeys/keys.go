package contextkeys

type contextKey string

const (
	UserIDKey             contextKey = "UserID"
	UserPermissionsMapKey contextKey = "userPermissionsMap"
)
