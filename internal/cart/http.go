package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

type Server struct {
	Sessions *Registry
	Log      *zap.Logger
}

type updateReq struct {
	Amount *int `json:"amount"`
}

func (s *Server) GetHandler() http.HandlerFunc           { return s.get }
func (s *Server) AddHandler() http.HandlerFunc           { return s.add }
func (s *Server) UpdateHandler() http.HandlerFunc        { return s.update }
func (s *Server) RemoveHandler() http.HandlerFunc        { return s.remove }
func (s *Server) NotificationsHandler() http.HandlerFunc { return s.notifications }

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sid, ok := SessionIDFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return nil, false
	}
	sess, err := s.Sessions.Session(r.Context(), sid)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("open session failed", zap.String("session_id", sid), zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "cart unavailable", nil)
		return nil, false
	}
	return sess, true
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.Store.Cart())
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	pid, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := sess.Store.AddProduct(r.Context(), pid); err != nil {
		s.writeCartError(w, r, sess, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.Store.Cart())
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	pid, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req updateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Amount == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "amount required", nil)
		return
	}

	if err := sess.Store.UpdateProductAmount(r.Context(), pid, *req.Amount); err != nil {
		s.writeCartError(w, r, sess, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.Store.Cart())
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	pid, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := sess.Store.RemoveProduct(r.Context(), pid); err != nil {
		s.writeCartError(w, r, sess, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.Store.Cart())
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.Inbox.Drain())
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"product_id": raw})
		return 0, false
	}
	return id, true
}

// writeCartError presents a failed operation: the toast text as the error and
// the unchanged cart in the details.
func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, sess *Session, err error) {
	var ce *Error
	if !errors.As(err, &ce) {
		if s.Log != nil {
			s.Log.Error("unexpected cart error", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	details := map[string]any{
		"kind":       ce.Kind.String(),
		"product_id": ce.ProductID,
		"cart":       sess.Store.Cart(),
	}

	switch ce.Kind {
	case KindInsufficientStock:
		kit.WriteError(w, r, http.StatusConflict, ce.Message(), details)
	case KindNotFound:
		kit.WriteError(w, r, http.StatusNotFound, ce.Message(), details)
	case KindInvalidQuantity:
		kit.WriteError(w, r, http.StatusUnprocessableEntity, ce.Message(), details)
	case KindCollaborator:
		kit.WriteError(w, r, http.StatusBadGateway, ce.Message(), details)
	default:
		kit.WriteError(w, r, http.StatusInternalServerError, ce.Message(), details)
	}
}
