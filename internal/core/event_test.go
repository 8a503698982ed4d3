package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	f, err := Encode(EventJoined, map[string]string{"roomId": "1234", "userId": "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"joined","data":{"roomId":"1234","userId":"u1"}}`, string(f))

	f, err = Encode(EventPong, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(f))
}

func TestEncodeError(t *testing.T) {
	f := EncodeError(errors.New("room not found"))

	var env Envelope
	require.NoError(t, json.Unmarshal(f, &env))
	assert.Equal(t, EventError, env.Type)

	var msg string
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "room not found", msg)
}
