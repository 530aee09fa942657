package usercontext

// Locals keys shared by middlewares and controllers.
const (
	LocalsKey        = "USER_CONTEXT"
	KeyFromProtected = "from_protected"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsPremium     = "isPremium"
)
