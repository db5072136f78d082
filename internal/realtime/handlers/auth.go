package handlers

// AuthContext carries authenticated socket identity information into handler
// functions. It intentionally excludes transport-specific types.
type AuthContext struct {
	userID    string
	sessionID string
}

// NewAuthContext constructs an AuthContext for a single socket event.
func NewAuthContext(userID, sessionID string) AuthContext {
	return AuthContext{
		userID:    userID,
		sessionID: sessionID,
	}
}

// UserID returns the authenticated user id.
func (a AuthContext) UserID() string {
	return a.userID
}

// SessionID returns the caller session id.
func (a AuthContext) SessionID() string {
	return a.sessionID
}
