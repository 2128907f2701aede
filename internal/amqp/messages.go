package amqp

import (
	"encoding/json"
	"time"
)

// DocumentSyncMessage asks the worker to push one journaled document
// revision to the remote store. Only the revision id travels on the wire;
// the worker fetches the payload from the local mirror.
type DocumentSyncMessage struct {
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDocumentSyncMessage(revision int64) *DocumentSyncMessage {
	return &DocumentSyncMessage{
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *DocumentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DocumentSyncMessageFromJSON(data []byte) (*DocumentSyncMessage, error) {
	var msg DocumentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
