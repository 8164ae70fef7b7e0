// internal/api/notification/models.go
package notification

import (
	"encoding/json"
	"time"

	"membership-backend/internal/models"
)

// RecipientsDirective is the raw recipients field from a create request.
// It is either the literal token "all" or a list of user ids (which may
// itself contain the "all" sentinel).
type RecipientsDirective []string

// UnmarshalJSON accepts both the bare string form ("all") and the array
// form (["id1", "id2"] or ["all"]).
func (d *RecipientsDirective) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = RecipientsDirective{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*d = RecipientsDirective(list)
	return nil
}

// CreateRequest is the admin-facing payload for creating a notification.
type CreateRequest struct {
	Title      string              `json:"title"`
	Message    string              `json:"message"`
	Category   string              `json:"category,omitempty"`
	Priority   string              `json:"priority,omitempty"`
	Link       string              `json:"link,omitempty"`
	Image      string              `json:"image,omitempty"` // data URI, optional
	Recipients RecipientsDirective `json:"recipients"`
}

// View is the response shape for a notification in a user's feed. IsRead
// is derived for the requesting user; Image is re-composed into a data URI
// at this boundary only.
type View struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Category      string    `json:"category"`
	Priority      string    `json:"priority"`
	Link          string    `json:"link,omitempty"`
	Image         string    `json:"image,omitempty"`
	IsForAllUsers bool      `json:"isForAllUsers"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AdminView is the response shape for the admin listing, exposing the
// targeting and full read set.
type AdminView struct {
	View
	Recipients []string `json:"recipients"`
	ReadBy     []string `json:"readBy"`
	CreatedBy  string   `json:"createdBy,omitempty"`
}

// Page is a paginated feed response.
type Page struct {
	Items      []View `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalCount int    `json:"totalCount"`
	TotalPages int    `json:"totalPages"`
}

// AdminPage is a paginated admin listing response.
type AdminPage struct {
	Items      []AdminView `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
}

func toView(n *models.Notification, forUser string) View {
	return View{
		ID:            n.ID,
		Title:         n.Title,
		Message:       n.Message,
		Category:      n.Category,
		Priority:      n.Priority,
		Link:          n.Link,
		Image:         n.ImageURL(),
		IsForAllUsers: n.IsForAllUsers,
		IsRead:        n.ReadByUser(forUser),
		CreatedAt:     n.CreatedAt,
	}
}

func toAdminView(n *models.Notification) AdminView {
	recipients := n.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	readBy := n.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return AdminView{
		View:       toView(n, ""),
		Recipients: recipients,
		ReadBy:     readBy,
		CreatedBy:  n.CreatedBy,
	}
}
