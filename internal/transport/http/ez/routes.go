package ez

// Routes are the groups an API module mounts its actions on.
type Routes struct {
	Public EZ // 无需登录
	Authed EZ // RequireAuth
	Admin  EZ // RequireAuth + ROLE_ADMIN
}
