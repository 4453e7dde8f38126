package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMarshalJSON(t *testing.T) {
	cases := map[Status]string{
		StatusMissing:           `""`,
		StatusStarting:          `"starting"`,
		StatusRunning:           `"running"`,
		StatusComplete:          `"complete"`,
		StatusCompleteWithError: `"complete with error"`,
		StatusShutdown:          `"shutdown by user"`,
	}
	for s, want := range cases {
		b, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
	_, err := json.Marshal(Status(99))
	assert.Error(t, err)
}

func TestTransferStatusIsFinished(t *testing.T) {
	assert.False(t, TransferStatus{Status: StatusRunning}.IsFinished())
	assert.False(t, TransferStatus{Status: StatusStarting}.IsFinished())
	assert.True(t, TransferStatus{Status: StatusComplete}.IsFinished())
	assert.True(t, TransferStatus{Status: StatusShutdown}.IsFinished())
}

func TestSafeStatus(t *testing.T) {
	s := safeStatus{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.get()
		}
	}()
	s.set(func(t *TransferStatus) { t.Status = StatusComplete })
	<-done
	assert.Equal(t, StatusComplete, s.get().Status)
}
