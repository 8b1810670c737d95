package user

// ProfileResponse is returned by GET /users/me.
type ProfileResponse struct {
	*User
	IsSecurityTeam bool `json:"is_security_team"`
}
