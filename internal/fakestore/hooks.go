package fakestore

import (
	"encoding/json"
	"net/http"
	"strings"
)

type hook struct {
	ID          int64             `json:"id"`
	ClientID    string            `json:"client_id"`
	StoreHash   string            `json:"store_hash"`
	Scope       string            `json:"scope"`
	Destination string            `json:"destination"`
	IsActive    bool              `json:"is_active"`
	Headers     map[string]string `json:"headers"`
	CreatedAt   int64             `json:"created_at"`
	UpdatedAt   int64             `json:"updated_at"`
}

// HookCount reports how many webhook subscriptions exist.
func (s *Store) HookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}

func (s *Store) createHook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scope       string            `json:"scope"`
		Destination string            `json:"destination"`
		IsActive    *bool             `json:"is_active"`
		Headers     map[string]string `json:"headers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV3Error(w, http.StatusBadRequest, "Input is invalid")
		return
	}
	if !strings.HasPrefix(req.Scope, "store/") || !strings.HasPrefix(req.Destination, "https://") {
		writeV3Error(w, http.StatusUnprocessableEntity, "Scope or destination is invalid")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().Unix()
	h := &hook{
		ID:          s.newID(),
		ClientID:    "fake-client",
		StoreHash:   s.Hash,
		Scope:       req.Scope,
		Destination: req.Destination,
		IsActive:    req.IsActive == nil || *req.IsActive,
		Headers:     req.Headers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.hooks[h.ID] = h
	writeData(w, http.StatusOK, h, map[string]any{})
}

func (s *Store) listHooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []*hook
	for _, id := range sortedKeys(s.hooks) {
		h := s.hooks[id]
		if v := q.Get("scope"); v != "" && h.Scope != v {
			continue
		}
		if v := q.Get("destination"); v != "" && h.Destination != v {
			continue
		}
		list = append(list, h)
	}
	start, end, page, limit := pageBounds(q, len(list))
	data := list[start:end]
	if data == nil {
		data = []*hook{}
	}
	writeData(w, http.StatusOK, data, paginationMeta(len(list), len(data), page, limit))
}

func (s *Store) deleteHook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "hookID")
	s.mu.Lock()
	defer s.mu.Unlock()
	h, found := s.hooks[id]
	if !ok || !found {
		writeV3Error(w, http.StatusNotFound, "Hook not found")
		return
	}
	delete(s.hooks, id)
	writeData(w, http.StatusOK, h, map[string]any{})
}
