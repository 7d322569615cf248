package dto

import "github.com/google/uuid"

const (
	IngestKindDocument = "document"
	IngestKindMeeting  = "meeting"
)

const (
	IngestActionProcess = "process"
	IngestActionDelete  = "delete"
)

// IngestTaskMessage travels over the in-process queue from the API handlers
// to the background processor.
type IngestTaskMessage struct {
	Id     uuid.UUID `json:"id"`
	Kind   string    `json:"kind"`   // document | meeting
	Action string    `json:"action"` // process | delete
}
