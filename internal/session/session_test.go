package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	assert.Equal(t, DefaultID, FromContext(context.Background()))
	assert.Equal(t, "alice", FromContext(WithID(context.Background(), "  alice ")))
	assert.Equal(t, DefaultID, FromContext(WithID(context.Background(), "   ")))
}
