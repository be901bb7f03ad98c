// Package events defines the notification records produced by the registry
// and the publishers that broadcast them to external observers.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/scriptorium-hq/scriptorium/internal/identity"
)

// Event types emitted by the registry.
const (
	TypePaperAdded      = "paper.added"
	TypePaperUpdated    = "paper.updated"
	TypePaperDeleted    = "paper.deleted"
	TypeCommentAdded    = "paper.comment_added"
	TypePaperViewed     = "paper.viewed"
	TypePaperDownloaded = "paper.downloaded"
	TypeRoleGranted     = "role.granted"
	TypeRoleRevoked     = "role.revoked"
)

// Event is the broadcast envelope. It is produced synchronously with the
// state change it describes; delivery is best effort.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// New builds an event envelope around a payload.
func New(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: data,
	}, nil
}

// PaperAdded signals a new paper record.
type PaperAdded struct {
	PaperID int64  `json:"paper_id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
}

// PaperUpdated signals replaced descriptive fields on a paper.
type PaperUpdated struct {
	PaperID int64  `json:"paper_id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
}

// PaperDeleted signals removal of a paper and its comment log.
type PaperDeleted struct {
	PaperID int64 `json:"paper_id"`
}

// CommentAdded signals an appended comment.
type CommentAdded struct {
	PaperID int64            `json:"paper_id"`
	Account identity.Account `json:"account"`
	Text    string           `json:"text"`
}

// PaperViewed signals a view counter increment.
type PaperViewed struct {
	PaperID int64            `json:"paper_id"`
	Account identity.Account `json:"account"`
}

// PaperDownloaded signals a download counter increment.
type PaperDownloaded struct {
	PaperID int64            `json:"paper_id"`
	Account identity.Account `json:"account"`
}

// RoleGranted signals a role assignment.
type RoleGranted struct {
	Account   identity.Account `json:"account"`
	Role      string           `json:"role"`
	GrantedBy identity.Account `json:"granted_by"`
}

// RoleRevoked signals a role removal.
type RoleRevoked struct {
	Account   identity.Account `json:"account"`
	Role      string           `json:"role"`
	RevokedBy identity.Account `json:"revoked_by"`
}
