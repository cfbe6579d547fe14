package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	tenantflow "github.com/tenantflow/tenantflow-go"
)

// NotificationAPI implements tenantflow.NotificationBackend over HTTP.
type NotificationAPI struct {
	t *Transport
}

// compile-time check
var _ tenantflow.NotificationBackend = (*NotificationAPI)(nil)

// listResponse is the success envelope of the notification list endpoint.
type listResponse struct {
	Notifications []tenantflow.Notification `json:"notifications"`
}

// List returns one page of the current user's notifications.
func (n *NotificationAPI) List(ctx context.Context, opts tenantflow.ListOptions) ([]tenantflow.Notification, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/notifications/my-notifications"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp listResponse
	if err := n.t.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// MarkRead marks a single notification as read.
func (n *NotificationAPI) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("rest: notification id cannot be empty")
	}
	return n.t.doJSON(ctx, http.MethodPut, "/notifications/notification/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllRead marks every notification of the current user as read.
func (n *NotificationAPI) MarkAllRead(ctx context.Context) error {
	return n.t.doJSON(ctx, http.MethodPut, "/notifications/mark-all-read", nil, nil)
}

// sendRequest is the body of the single-recipient send endpoint.
type sendRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Send delivers a notification to one user (admin operation).
func (n *NotificationAPI) Send(ctx context.Context, userID string, msg tenantflow.Notification) error {
	if userID == "" {
		return fmt.Errorf("rest: recipient id cannot be empty")
	}
	body := sendRequest{UserID: userID, Title: msg.Title, Message: msg.Message}
	return n.t.doJSON(ctx, http.MethodPost, "/notifications/send-notification", body, nil)
}

// SendBulk delivers the same notification to a set of users.
func (n *NotificationAPI) SendBulk(ctx context.Context, b tenantflow.BulkNotification) error {
	if len(b.UserIDs) == 0 {
		return fmt.Errorf("rest: bulk notification requires at least one recipient")
	}
	return n.t.doJSON(ctx, http.MethodPost, "/notifications/send-bulk-notification", b, nil)
}

// Stats returns the server-side notification summary.
func (n *NotificationAPI) Stats(ctx context.Context) (*tenantflow.NotificationStats, error) {
	var stats tenantflow.NotificationStats
	if err := n.t.doJSON(ctx, http.MethodGet, "/notifications/notification-stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
