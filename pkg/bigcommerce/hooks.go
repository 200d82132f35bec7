package bigcommerce

import (
	"context"
	"strconv"
)

// Webhook scopes the app subscribes to.
const (
	ScopeCartCreated    = "store/cart/created"
	ScopeCartUpdated    = "store/cart/updated"
	ScopeCartDeleted    = "store/cart/deleted"
	ScopeOrderCreated   = "store/order/created"
	ScopeOrderUpdated   = "store/order/statusUpdated"
	ScopeAppUninstalled = "store/app/uninstalled"
)

type Hook struct {
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

// HookCreate subscribes Destination to Scope. Headers are echoed on every
// delivery and are how receivers authenticate the caller.
type HookCreate struct {
	Scope       string            `json:"scope" validate:"required"`
	Destination string            `json:"destination" validate:"required,url,startswith=https://"`
	IsActive    *bool             `json:"is_active,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type HookSearch struct {
	Scope       string
	Destination string
	Limit       int
	Page        int
}

func (s HookSearch) Filter() Filter {
	f := NewFilter()
	if s.Scope != "" {
		f = f.Add("scope", s.Scope)
	}
	if s.Destination != "" {
		f = f.Add("destination", s.Destination)
	}
	if s.Limit > 0 {
		f = f.Add("limit", strconv.Itoa(s.Limit))
	}
	if s.Page > 0 {
		f = f.Add("page", strconv.Itoa(s.Page))
	}
	return f
}

func (s HookSearch) Next(p Pagination) HookSearch {
	s.Page = p.CurrentPage + 1
	if s.Limit == 0 {
		s.Limit = p.PerPage
	}
	return s
}

func (c Client) CreateHook(ctx context.Context, hook HookCreate) (Result[Hook], error) {
	if err := validatePayload("create hook", hook); err != nil {
		return Result[Hook]{}, err
	}
	return Post[Hook](ctx, c, HooksEndpoint(), Filter{}, hook)
}

func (c Client) ListHooks(ctx context.Context, s HookSearch) (PagedResult[Hook], error) {
	return GetPaged[Hook](ctx, c, HooksEndpoint(), s.Filter())
}

func (c Client) DeleteHook(ctx context.Context, hookID int64) (Result[Hook], error) {
	return Delete[Hook](ctx, c, HookEndpoint(hookID), Filter{})
}

// EnsureHook creates the subscription unless an identical scope and
// destination is already registered, in which case that hook is returned.
func (c Client) EnsureHook(ctx context.Context, hook HookCreate) (Result[Hook], error) {
	if err := validatePayload("ensure hook", hook); err != nil {
		return Result[Hook]{}, err
	}
	for page, err := range Pages(ctx, HookSearch{Scope: hook.Scope, Destination: hook.Destination}, c.ListHooks) {
		if err != nil {
			return Result[Hook]{}, err
		}
		if !page.Success() {
			return Result[Hook]{Outcome: OutcomeFailure, StatusCode: page.StatusCode, Err: page.Err, Body: page.Body}, nil
		}
		for _, h := range page.Data {
			if h.Scope == hook.Scope && h.Destination == hook.Destination {
				return Result[Hook]{Outcome: OutcomeData, Data: h, StatusCode: page.StatusCode}, nil
			}
		}
	}
	return c.CreateHook(ctx, hook)
}
