package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies how a notification was delivered. The core only ever
// produces system-generated notifications; the enum exists so the persisted
// shape does not need a migration if other channels appear later.
type Channel string

// ChannelSystem is the single channel used by the notification dispatcher.
const ChannelSystem Channel = "SYSTEM"

// Notification is a system-generated message addressed to one user,
// optionally linked to an issue. Created only as a side effect of issue
// lifecycle operations; the only mutation ever applied is mark-as-read.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	Message     string     `json:"message"`
	Channel     Channel    `json:"channel"`
	SentAt      time.Time  `json:"sent_at"`
	Delivered   bool       `json:"delivered"`
	Read        bool       `json:"read"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	IssueID     *uuid.UUID `json:"issue_id,omitempty"`
}
