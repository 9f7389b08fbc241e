package recorder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robus-bus/robus/pkg/robus"
)

func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	msgs := []robus.Message{
		robus.ID(1, robus.Identify, []byte{1, 2, 3}),
		robus.Broadcast(robus.GetState, nil),
		robus.TypeMsg(uint16(robus.Servo), robus.ServoPosition, []byte{90}),
	}
	for _, m := range msgs {
		r.Observe(m)
	}

	got, err := ReadAll(&buf)
	require.NoError(t, err, "ReadAll should decode the recorded stream")
	require.Len(t, got, len(msgs), "every Observe call should yield one record")

	for i, m := range msgs {
		assert.Equal(t, m.Header.Command, got[i].Header.Command, "record %d command", i)
		assert.Equal(t, m.Header.Target, got[i].Header.Target, "record %d target", i)
		assert.Equal(t, m.Data, got[i].Data, "record %d payload", i)
	}
}

func TestReadAllOnEmptyStreamReturnsNoRecords(t *testing.T) {
	got, err := ReadAll(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
