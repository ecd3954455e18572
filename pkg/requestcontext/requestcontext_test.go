package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "ria/pkg/domain"
)

func TestParticipantID(t *testing.T) {
	ctx := context.Background()

	_, ok := ParticipantID(ctx)
	assert.False(t, ok, "unauthenticated context has no participant")

	_, ok = ParticipantID(WithParticipantID(ctx, id.ParticipantID{}))
	assert.False(t, ok, "nil participant counts as unauthenticated")

	pid := id.NewParticipantID()
	got, ok := ParticipantID(WithParticipantID(ctx, pid))
	assert.True(t, ok)
	assert.Equal(t, pid, got)
}

func TestNow(t *testing.T) {
	pinned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, pinned, Now(WithTime(context.Background(), pinned)))
	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}
