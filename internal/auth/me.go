package auth

import (
	"context"
	"net/http"
)

type UserInfo struct {
	ID       uint   `json:"id"`
	Subject  string `json:"subject"`
	Username string `json:"username"`
}

type MeResponse struct {
	Body struct {
		User    *UserInfo `json:"user"`
		IsOwner bool      `json:"isOwner"`
	}
}

// HandleMe returns the signed-in user, or a null user for anonymous
// callers and stale sessions.
func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	res := &MeResponse{}
	id, err := h.Identify(ctx, *input)
	if err != nil || id == nil {
		return res, nil
	}
	res.Body.User = &UserInfo{ID: id.UserID, Subject: id.Subject, Username: id.Username}
	res.Body.IsOwner = h.policy.IsOwner(id)
	return res, nil
}

type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

func (h *AuthHandler) HandleLogout(ctx context.Context, input *struct{}) (*LogoutResponse, error) {
	res := &LogoutResponse{
		SetCookie: http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		},
	}
	res.Body.Success = true
	return res, nil
}

type OwnerCheckResponse struct {
	Body struct {
		IsLoggedIn bool   `json:"isLoggedIn"`
		UserName   string `json:"userName,omitempty"`
		IsOwner    bool   `json:"isOwner"`
	}
}

// HandleOwnerCheck helps diagnose why the admin pages refuse a user. The
// configured owner ID is never returned.
func (h *AuthHandler) HandleOwnerCheck(ctx context.Context, input *AuthInput) (*OwnerCheckResponse, error) {
	res := &OwnerCheckResponse{}
	id, err := h.Identify(ctx, *input)
	if err != nil || id == nil {
		return res, nil
	}
	res.Body.IsLoggedIn = true
	res.Body.UserName = id.Username
	res.Body.IsOwner = h.policy.IsOwner(id)
	return res, nil
}
