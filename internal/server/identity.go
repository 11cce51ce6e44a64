package server

import (
	"context"
	"net/http"
)

// UserInfo is the authenticated identity attached to each request.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type ctxKey int

const (
	userIDKey ctxKey = iota
	userInfoKey
	reqMetaKey
)

// noteUserID records the resolved user on the request metadata seeded by
// RequestLogging, when present.
func noteUserID(ctx context.Context, id int) {
	if meta, ok := ctx.Value(reqMetaKey).(*reqMeta); ok {
		meta.userID = id
	}
}

// DevIdentity is the identity middleware for local development: every request
// runs as user 1 without Tailscale.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), userIDKey, 1)
		ctx = context.WithValue(ctx, userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
		noteUserID(ctx, 1)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identity resolves the request identity. With a Tailscale local client set,
// the caller is identified via WhoIs and mapped to a database user; otherwise
// the dev identity applies.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ts == nil {
			DevIdentity(next).ServeHTTP(w, r)
			return
		}

		who, err := s.ts.WhoIs(r.Context(), r.RemoteAddr)
		if err != nil || who.UserProfile == nil {
			s.log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
			http.Error(w, `{"error":"identity required"}`, http.StatusUnauthorized)
			return
		}

		info := UserInfo{
			Login:       who.UserProfile.LoginName,
			DisplayName: who.UserProfile.DisplayName,
		}
		uid, err := s.db.GetOrCreateUser(r.Context(), info.Login, info.DisplayName)
		if err != nil {
			s.log.Error("user lookup failed", "login", info.Login, "error", err)
			http.Error(w, `{"error":"user lookup failed"}`, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, uid)
		ctx = context.WithValue(ctx, userInfoKey, info)
		noteUserID(ctx, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext returns the request's user ID, defaulting to user 1 when
// no identity middleware ran.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// userInfoFromContext returns the request's identity, defaulting to the dev
// user when no identity middleware ran.
func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return UserInfo{Login: "local", DisplayName: "Local Dev User"}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}
