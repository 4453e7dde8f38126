package actions

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type Status uint32

const (
	StatusMissing         = 0
	StatusStarting Status = iota + 1
	StatusRunning
	StatusComplete
	StatusCompleteWithError
	StatusShutdown
)

func (s Status) MarshalJSON() ([]byte, error) {
	var retval string
	switch s {
	case StatusMissing:
		retval = ""
	case StatusStarting:
		retval = "starting"
	case StatusRunning:
		retval = "running"
	case StatusComplete:
		retval = "complete"
	case StatusCompleteWithError:
		retval = "complete with error"
	case StatusShutdown:
		retval = "shutdown by user"
	default:
		err := fmt.Errorf("unhandled Status value %v in custom MarshalJSON() conversion", s)
		return nil, err
	}
	return json.Marshal(retval)
}

type TransferStatus struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    Status    `json:"transferStatus"`
	Error     string    `json:"error"`
}

func (t TransferStatus) IsFinished() bool {
	return t.Status != StatusStarting && t.Status != StatusRunning
}

// safeStatus guards a TransferStatus that is read by the web server while a transfer runs.
type safeStatus struct {
	sync.RWMutex
	s TransferStatus
}

func (s *safeStatus) set(fn func(t *TransferStatus)) {
	s.Lock()
	defer s.Unlock()
	fn(&s.s)
}

func (s *safeStatus) get() TransferStatus {
	s.RLock()
	defer s.RUnlock()
	return s.s
}
