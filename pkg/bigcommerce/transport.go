package bigcommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// v2 list endpoints page with ?page=&limit= and default to 50 rows.
const defaultV2Limit = 50

type responseMeta struct {
	Pagination *Pagination `json:"pagination"`
}

func Get[T any](ctx context.Context, c Client, ep Endpoint, f Filter) (Result[T], error) {
	return send[T](ctx, c, http.MethodGet, ep, f, nil)
}

func Post[T any](ctx context.Context, c Client, ep Endpoint, f Filter, body any) (Result[T], error) {
	return send[T](ctx, c, http.MethodPost, ep, f, body)
}

func Put[T any](ctx context.Context, c Client, ep Endpoint, f Filter, body any) (Result[T], error) {
	return send[T](ctx, c, http.MethodPut, ep, f, body)
}

func Delete[T any](ctx context.Context, c Client, ep Endpoint, f Filter) (Result[T], error) {
	return send[T](ctx, c, http.MethodDelete, ep, f, nil)
}

// GetPaged fetches one page of a list endpoint.
// v3 pagination comes from meta.pagination; v2 lists carry none, so it is
// derived from the requested page and limit: a full page implies another one.
func GetPaged[T any](ctx context.Context, c Client, ep Endpoint, f Filter) (PagedResult[T], error) {
	status, body, err := c.do(ctx, http.MethodGet, ep, f, nil)
	if err != nil {
		return PagedResult[T]{}, err
	}
	res, meta := buildResult[[]T](ep, status, body)
	out := PagedResult[T]{Result: res}
	if !res.Success() {
		return out, nil
	}
	if meta != nil && meta.Pagination != nil {
		out.Pagination = *meta.Pagination
		return out, nil
	}
	out.Pagination = derivePagination(f, len(res.Data))
	return out, nil
}

func send[T any](ctx context.Context, c Client, method string, ep Endpoint, f Filter, reqBody any) (Result[T], error) {
	status, body, err := c.do(ctx, method, ep, f, reqBody)
	if err != nil {
		return Result[T]{}, err
	}
	res, _ := buildResult[T](ep, status, body)
	return res, nil
}

// do performs one HTTP call. Only transport failures are returned as errors.
func (c Client) do(ctx context.Context, method string, ep Endpoint, f Filter, reqBody any) (int, []byte, error) {
	if c.StoreHash == "" || c.AccessToken == "" {
		return 0, nil, ErrMissingCredentials
	}

	var reader io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s body: %w", method, ep, err)
		}
		reader = bytes.NewReader(b)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("%s %s: rate limit wait: %w", method, ep, err)
		}
	}

	u := c.baseURL() + ep.String()
	if q := f.Encode(); q != "" {
		u += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set(headerAuthToken, c.AccessToken)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, ep, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%s %s: read body: %w", method, ep, err)
	}

	c.logger().Debug("bigcommerce call",
		zap.String("method", method),
		zap.String("path", ep.String()),
		zap.String("query", f.Encode()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, b, nil
}

func buildResult[T any](ep Endpoint, status int, body []byte) (Result[T], *responseMeta) {
	res := Result[T]{StatusCode: status}

	if status < 200 || status >= 300 {
		res.Err = newAPIError(status, body)
		res.Body = body
		return res, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		res.Outcome = OutcomeEmpty
		return res, nil
	}

	payload := json.RawMessage(body)
	var meta *responseMeta
	if ep.Version == V3 {
		var env struct {
			Data json.RawMessage `json:"data"`
			Meta *responseMeta   `json:"meta"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return decodeFailure(res, body, err), nil
		}
		payload, meta = env.Data, env.Meta
	}

	if len(payload) == 0 || string(payload) == "null" {
		res.Outcome = OutcomeEmpty
		return res, meta
	}
	if err := json.Unmarshal(payload, &res.Data); err != nil {
		return decodeFailure(res, body, err), meta
	}
	res.Outcome = OutcomeData
	return res, meta
}

func decodeFailure[T any](res Result[T], body []byte, err error) Result[T] {
	var zero T
	res.Data = zero
	res.Outcome = OutcomeFailure
	res.Body = body
	res.Err = &APIError{
		Status:  res.StatusCode,
		Message: fmt.Sprintf("decode bigcommerce response failed: %v body=%s", err, string(body)),
	}
	return res
}

func derivePagination(f Filter, count int) Pagination {
	page := atoiDefault(f.Get("page"), 1)
	limit := atoiDefault(f.Get("limit"), defaultV2Limit)

	totalPages := page
	if count >= limit {
		totalPages = page + 1
	}
	return Pagination{
		Total:       (page-1)*limit + count,
		Count:       count,
		PerPage:     limit,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
}

// paginationFromTotal builds the cursor of a v2 page when the total is known.
func paginationFromTotal(f Filter, count, total int) Pagination {
	page := atoiDefault(f.Get("page"), 1)
	limit := atoiDefault(f.Get("limit"), defaultV2Limit)
	return Pagination{
		Total:       total,
		Count:       count,
		PerPage:     limit,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
