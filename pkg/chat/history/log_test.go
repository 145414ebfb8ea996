package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/repository/memory"
	"ai-medical-chat-be/pkg/chat/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	registry *session.Registry
	log      *Log
}

func newFixture() *fixture {
	store := memory.NewStore()
	registry := session.NewRegistry(store)
	return &fixture{store: store, registry: registry, log: NewLog(store, registry)}
}

func (f *fixture) newSession(t *testing.T) *entity.ChatSession {
	t.Helper()
	s, err := f.registry.Create(context.Background(), uuid.New())
	require.NoError(t, err)
	return s
}

func TestAppend_FirstUserMessageSetsTitle(t *testing.T) {
	f := newFixture()
	s := f.newSession(t)
	ctx := context.Background()

	res, err := f.log.Append(ctx, s, constant.ChatMessageRoleUser, "I have a headache")
	require.NoError(t, err)
	assert.True(t, res.TitleSet)
	assert.Equal(t, "I have a headache", res.Title)
	assert.Equal(t, int64(1), res.Message.Seq)

	res, err = f.log.Append(ctx, s, constant.ChatMessageRoleAssistant, "Rest and drink water.")
	require.NoError(t, err)
	assert.False(t, res.TitleSet)
	assert.Equal(t, "I have a headache", res.Title)

	res, err = f.log.Append(ctx, s, constant.ChatMessageRoleUser, "It got worse overnight")
	require.NoError(t, err)
	assert.False(t, res.TitleSet)
	assert.Equal(t, "I have a headache", res.Title, "second user message never alters the title")
}

func TestAppend_LongFirstMessageTruncatesTitle(t *testing.T) {
	f := newFixture()
	s := f.newSession(t)

	msg := "My left knee has been swelling up after every run"
	res, err := f.log.Append(context.Background(), s, constant.ChatMessageRoleUser, msg)
	require.NoError(t, err)
	assert.Equal(t, "My left knee has been swelling...", res.Title)
	assert.Equal(t, msg, res.Message.Content, "content itself is stored whole")
}

func TestAppend_RejectsUnknownRole(t *testing.T) {
	f := newFixture()
	s := f.newSession(t)

	_, err := f.log.Append(context.Background(), s, "system", "hello")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAppend_MissingSession(t *testing.T) {
	f := newFixture()
	ghost := &entity.ChatSession{Id: uuid.New(), UserId: uuid.New()}

	_, err := f.log.Append(context.Background(), ghost, constant.ChatMessageRoleUser, "hi")
	assert.ErrorIs(t, err, ErrSessionGone)
}

func TestAppend_ClockSkewKeepsOrder(t *testing.T) {
	f := newFixture()
	s := f.newSession(t)
	ctx := context.Background()

	base := time.Now()
	offsets := []time.Duration{0, -time.Second, 2 * time.Second, -time.Hour}
	i := 0
	f.log.now = func() time.Time {
		d := offsets[i]
		i++
		return base.Add(d)
	}

	for n := range offsets {
		_, err := f.log.Append(ctx, s, constant.ChatMessageRoleUser, fmt.Sprintf("m%d", n))
		require.NoError(t, err)
	}

	history, err := f.log.History(ctx, s.Id)
	require.NoError(t, err)
	require.Len(t, history, len(offsets))
	for n := 1; n < len(history); n++ {
		assert.False(t, history[n].CreatedAt.Before(history[n-1].CreatedAt))
		assert.Equal(t, fmt.Sprintf("m%d", n), history[n].Content)
	}
}

func TestWindow(t *testing.T) {
	f := newFixture()
	s := f.newSession(t)
	other := f.newSession(t)
	ctx := context.Background()

	for n := 0; n < 5; n++ {
		_, err := f.log.Append(ctx, s, constant.ChatMessageRoleUser, fmt.Sprintf("m%d", n))
		require.NoError(t, err)
	}
	_, err := f.log.Append(ctx, other, constant.ChatMessageRoleUser, "other session")
	require.NoError(t, err)

	window, err := f.log.Window(ctx, s.Id, 3)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, "m2", window[0].Content)
	assert.Equal(t, "m4", window[2].Content)

	full, err := f.log.Window(ctx, s.Id, 10)
	require.NoError(t, err)
	history, err := f.log.History(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, history, full, "window equals history when history fits")
	for _, m := range full {
		assert.Equal(t, s.Id, m.ChatSessionId)
	}

	empty, err := f.log.Window(ctx, s.Id, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAppend_ConcurrentAppendsGetDistinctSeq(t *testing.T) {
	f := newFixture()
	s := f.newSession(t)
	ctx := context.Background()

	const n = 30
	var wg sync.WaitGroup
	titleWins := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.log.Append(ctx, s, constant.ChatMessageRoleUser, fmt.Sprintf("msg %d", i))
			if assert.NoError(t, err) {
				titleWins <- res.TitleSet
			}
		}(i)
	}
	wg.Wait()
	close(titleWins)

	wins := 0
	for w := range titleWins {
		if w {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	history, err := f.log.History(ctx, s.Id)
	require.NoError(t, err)
	require.Len(t, history, n)
	for i, m := range history {
		assert.Equal(t, int64(i+1), m.Seq)
	}
}
