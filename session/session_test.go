package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore(time.Hour)

	created := s.Create()
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err, "session IDs are UUIDs")

	assert.False(t, created.LoggedIn)
	assert.False(t, created.UseManual)
	assert.Empty(t, created.SitemapURLs)

	got, ok := s.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)

	_, ok = s.Get("unknown")
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }

	st := s.Create()

	now = now.Add(30 * time.Second)
	_, ok := s.Get(st.ID)
	require.True(t, ok, "session alive before ttl")

	// Get extended the expiry by another minute.
	now = now.Add(45 * time.Second)
	_, ok = s.Get(st.ID)
	require.True(t, ok, "sliding expiry keeps an active session alive")

	now = now.Add(2 * time.Minute)
	_, ok = s.Get(st.ID)
	assert.False(t, ok, "session expired")
	assert.Equal(t, 0, s.Len())
}

func TestStore_UpdateReturnsCopies(t *testing.T) {
	s := NewStore(time.Hour)
	st := s.Create()

	updated, ok := s.Update(st.ID, func(state *State) {
		state.ApplyManual([]string{"https://a.example"})
	})
	require.True(t, ok)

	updated.SitemapURLs[0] = "mutated"

	got, _ := s.Get(st.ID)
	assert.Equal(t, []string{"https://a.example"}, got.SitemapURLs)
}

func TestState_Transitions(t *testing.T) {
	var st State

	st.Login("name@company.com")
	assert.True(t, st.LoggedIn)

	st.ApplyScan("https://example.com", []string{"https://example.com", "https://example.com/about"}, false)
	assert.False(t, st.UseManual)
	assert.Len(t, st.SitemapURLs, 2)

	st.ApplyScan("https://example.com", []string{"https://example.com"}, true)
	assert.True(t, st.UseManual, "insufficient scan switches to manual")
	assert.Len(t, st.SitemapURLs, 2, "insufficient scan keeps previous URLs")

	st.ApplyScanError("https://down.example")
	assert.True(t, st.UseManual)
	assert.Equal(t, "https://down.example", st.SeedURL)

	st.ApplyManual([]string{"https://m.example"})
	assert.Equal(t, []string{"https://m.example"}, st.SitemapURLs)
}

func TestStore_TakeNotice(t *testing.T) {
	s := NewStore(time.Hour)
	st := s.Create()

	s.Update(st.ID, func(state *State) { state.Flash(LevelWarning, "few links") })

	notice := s.TakeNotice(st.ID)
	require.NotNil(t, notice)
	assert.Equal(t, LevelWarning, notice.Level)
	assert.Nil(t, s.TakeNotice(st.ID), "notice is one-shot")
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(time.Hour)
	st := s.Create()
	s.Delete(st.ID)
	_, ok := s.Get(st.ID)
	assert.False(t, ok)
}
