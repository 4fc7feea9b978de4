package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// OrderUser carries the customer identity fields of an order entry.
type OrderUser struct {
	Name  string `json:"usrName"`
	Phone string `json:"usrPhone"`
	Birth string `json:"usrBirth"`
}

// OrderDetail carries the analysis state of an order entry.
type OrderDetail struct {
	ID            int64  `json:"oddId"`
	TransactionID string `json:"oddTransactionId"`
	State         string `json:"oddState"`
	CompletedAt   string `json:"oddCompletedAt"`
}

// OrderEntry is one row of the portal order listing.
type OrderEntry struct {
	User        OrderUser   `json:"user"`
	OrderDetail OrderDetail `json:"orderDetail"`
}

type orderListResponse struct {
	List []OrderEntry `json:"list"`
}

// CustomerMatch resolves a customer search to a collectible analysis.
type CustomerMatch struct {
	AnalysisID    int64
	TransactionID string
	Name          string
	Phone         string
	Birth         string
	State         string
	CompletedAt   string
}

// SearchOrders queries the order listing for one page of entries. When a
// phone number is given the search runs on it with separators stripped,
// otherwise on the customer name.
func (c *Client) SearchOrders(ctx context.Context, auth *AuthContext, name, phone string, page int) ([]OrderEntry, error) {
	if auth == nil {
		return nil, errors.New("auth context required")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("memId", strconv.FormatInt(auth.AccountID, 10))
	params.Set("page", strconv.Itoa(page))
	if cleaned := strings.ReplaceAll(strings.TrimSpace(phone), "-", ""); cleaned != "" {
		params.Set("searchKey", "usrPhone")
		params.Set("searchText", cleaned)
	} else {
		params.Set("searchKey", "usrName")
		params.Set("searchText", strings.TrimSpace(name))
	}

	status, body, err := c.Get(ctx, auth, "/order-detail", params)
	if err != nil {
		return nil, fmt.Errorf("fetch order list: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("order list returned %d", status)
	}

	var parsed orderListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}
	return parsed.List, nil
}

// ResolveAnalysis finds the most recent analysis for a customer. The portal
// lists orders newest first, so the first matching entry wins.
func (c *Client) ResolveAnalysis(ctx context.Context, auth *AuthContext, name, phone string) (*CustomerMatch, error) {
	entries, err := c.SearchOrders(ctx, auth, name, phone, 1)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.OrderDetail.ID == 0 {
			continue
		}
		return &CustomerMatch{
			AnalysisID:    entry.OrderDetail.ID,
			TransactionID: entry.OrderDetail.TransactionID,
			Name:          entry.User.Name,
			Phone:         entry.User.Phone,
			Birth:         entry.User.Birth,
			State:         entry.OrderDetail.State,
			CompletedAt:   entry.OrderDetail.CompletedAt,
		}, nil
	}
	return nil, fmt.Errorf("no analysis found for customer %q", strings.TrimSpace(name))
}
