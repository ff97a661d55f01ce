package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

const DefaultTTL = 24 * time.Hour

// Server issues anonymous shopper sessions. A session token is all a browser
// needs to reach its cart.
type Server struct {
	Log *zap.Logger
	JWT *TokenMaker
	TTL time.Duration
}

type issueResp struct {
	SessionID   string    `json:"session_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	sid := "s_" + uuid.NewString()
	tok, err := s.JWT.New(sid, ttl)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("token issue", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, issueResp{
		SessionID:   sid,
		AccessToken: tok,
		ExpiresAt:   time.Now().Add(ttl).UTC(),
	})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	tok, ok := kit.BearerToken(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
		return
	}

	claims, err := s.JWT.Parse(tok)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": claims.SessionID,
		"expires_at": claims.ExpiresAt.Time.UTC(),
	})
}
