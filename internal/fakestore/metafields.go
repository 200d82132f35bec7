package fakestore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type resourceType string

const (
	resourceOrder   resourceType = "order"
	resourceProduct resourceType = "product"
)

// param is the route parameter that carries the resource id.
func (rt resourceType) param() string {
	if rt == resourceProduct {
		return "productID"
	}
	return "orderID"
}

var permissionSets = map[string]bool{
	"app_only": true, "read": true, "write": true,
	"read_and_sf_access": true, "write_and_sf_access": true,
}

type metafield struct {
	ID            int64        `json:"id"`
	Key           string       `json:"key"`
	Value         string       `json:"value"`
	Namespace     string       `json:"namespace"`
	PermissionSet string       `json:"permission_set"`
	ResourceType  resourceType `json:"resource_type"`
	ResourceID    int64        `json:"resource_id"`
	Description   string       `json:"description"`
	DateCreated   string       `json:"date_created"`
	DateModified  string       `json:"date_modified"`
}

type metafieldReq struct {
	ResourceID    int64  `json:"resource_id"`
	Key           string `json:"key"`
	Value         string `json:"value"`
	Namespace     string `json:"namespace"`
	PermissionSet string `json:"permission_set"`
	Description   string `json:"description"`
}

func (s *Store) resourceExists(rt resourceType, id int64) bool {
	switch rt {
	case resourceOrder:
		_, ok := s.orders[id]
		return ok
	case resourceProduct:
		_, ok := s.products[id]
		return ok
	}
	return false
}

// createMetafields is the batch endpoint: all items are created or none.
func (s *Store) createMetafields(rt resourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqs []metafieldReq
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil || len(reqs) == 0 {
			writeV3Error(w, http.StatusUnprocessableEntity, "The request body must be a non-empty array")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		seen := map[string]bool{}
		for _, req := range reqs {
			if !s.resourceExists(rt, req.ResourceID) {
				writeV3Error(w, http.StatusUnprocessableEntity, fmt.Sprintf("The %s %d does not exist", rt, req.ResourceID))
				return
			}
			if req.Key == "" || req.Value == "" || req.Namespace == "" || !permissionSets[req.PermissionSet] {
				writeV3Error(w, http.StatusUnprocessableEntity, "The metafield is invalid")
				return
			}
			k := fmt.Sprintf("%d/%s/%s", req.ResourceID, req.Namespace, req.Key)
			if seen[k] || s.metafieldExists(rt, req.ResourceID, req.Namespace, req.Key) {
				writeV3Error(w, http.StatusConflict, "A metafield with this key and namespace already exists")
				return
			}
			seen[k] = true
		}

		stamp := s.now().UTC().Format(time.RFC3339)
		out := make([]*metafield, 0, len(reqs))
		for _, req := range reqs {
			m := &metafield{
				ID:            s.newID(),
				Key:           req.Key,
				Value:         req.Value,
				Namespace:     req.Namespace,
				PermissionSet: req.PermissionSet,
				ResourceType:  rt,
				ResourceID:    req.ResourceID,
				Description:   req.Description,
				DateCreated:   stamp,
				DateModified:  stamp,
			}
			s.metafields[m.ID] = m
			out = append(out, m)
		}
		writeData(w, http.StatusOK, out, map[string]any{"total": len(out), "success": len(out), "failed": 0})
	}
}

func (s *Store) metafieldExists(rt resourceType, resourceID int64, namespace, key string) bool {
	for _, m := range s.metafields {
		if m.ResourceType == rt && m.ResourceID == resourceID && m.Namespace == namespace && m.Key == key {
			return true
		}
	}
	return false
}

func (s *Store) listMetafields(rt resourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathInt(r, rt.param())
		q := r.URL.Query()

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.resourceExists(rt, id) {
			writeV3Error(w, http.StatusNotFound, fmt.Sprintf("The %s was not found", rt))
			return
		}

		matched := make([]*metafield, 0)
		for _, mid := range sortedKeys(s.metafields) {
			m := s.metafields[mid]
			if m.ResourceType != rt || m.ResourceID != id {
				continue
			}
			if k := q.Get("key"); k != "" && m.Key != k {
				continue
			}
			if ns := q.Get("namespace"); ns != "" && m.Namespace != ns {
				continue
			}
			matched = append(matched, m)
		}
		start, end, page, limit := pageBounds(q, len(matched))
		data := matched[start:end]
		writeData(w, http.StatusOK, data, paginationMeta(len(matched), len(data), page, limit))
	}
}

func (s *Store) deleteMetafield(rt resourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathInt(r, rt.param())
		mid, _ := pathInt(r, "metafieldID")

		s.mu.Lock()
		defer s.mu.Unlock()
		m, ok := s.metafields[mid]
		if !ok || m.ResourceType != rt || m.ResourceID != id {
			writeV3Error(w, http.StatusNotFound, "The metafield was not found")
			return
		}
		delete(s.metafields, mid)
		w.WriteHeader(http.StatusNoContent)
	}
}
