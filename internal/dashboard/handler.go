package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"skein/internal/syncer"
)

// Handler bridges daemon events to dashboard broadcasts. It implements
// the daemon's Events interface.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates an event handler connected to a dashboard server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// OnSyncComplete broadcasts the outcome of a sync run.
func (h *Handler) OnSyncComplete(result *syncer.Result, duration time.Duration) {
	h.logger.Printf("Sync complete: success=%v pushed=%d pulled=%d",
		result.Success, result.Pushed, result.Pulled)

	h.send(MessageTypeSyncComplete, SyncCompleteData{
		Success:  result.Success,
		Pushed:   result.Pushed,
		Pulled:   result.Pulled,
		Errors:   result.Errors,
		Duration: duration,
	})
}

// OnCollectionChange broadcasts a local edit to a collection.
func (h *Handler) OnCollectionChange(key string) {
	h.send(MessageTypeCollectionUpdate, CollectionUpdateData{Collection: key})
}

// OnStats broadcasts current stash sizes.
func (h *Handler) OnStats(projects, items int) {
	h.send(MessageTypeStats, StatsData{Projects: projects, Items: items})
}

func (h *Handler) send(typ MessageType, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      payload,
	})
}
