package entity

import (
	"time"

	"github.com/google/uuid"
)

type ItemType string

const (
	TypeText  ItemType = "text"
	TypeImage ItemType = "image"
)

type Status string

// StatusWaiting is the only status this producer ever writes. Every
// transition after insert belongs to the external analysis worker.
const StatusWaiting Status = "waiting"

// Origin tags every queue record written by this producer.
const Origin = "share-ingest"

// WorkItem is one durable queue record describing a single piece of shared
// content awaiting analysis. URL and StoragePath are set iff Type is image:
// URL is the public retrieval address, StoragePath the handle the worker
// uses to delete the blob once it is done.
type WorkItem struct {
	ID          uuid.UUID `json:"id"`
	Type        ItemType  `json:"type"`
	Content     string    `json:"content"` // raw text, or stored object filename
	URL         *string   `json:"url,omitempty"`
	Mode        Mode      `json:"mode"`
	Status      Status    `json:"status"`
	Origin      string    `json:"origin"`
	StoragePath *string   `json:"storage_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
