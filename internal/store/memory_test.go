package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, kind RunKind, started time.Time) RunRecord {
	return RunRecord{ID: id, Kind: kind, StartedAt: started, FinishedAt: started.Add(time.Second), Outcome: "ok"}
}

func TestMemoryStoreCountRetention(t *testing.T) {
	s := NewMemoryStore(3, 0)
	base := time.Now()
	for i := 0; i < 5; i++ {
		s.Save(record(fmt.Sprint(i), KindBriefing, base.Add(time.Duration(i)*time.Minute)))
	}

	got := s.List("", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, "2", got[2].ID)
}

func TestMemoryStoreAgeRetention(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.Save(record("old", KindDispatch, now.Add(-2*time.Hour)))
	s.Save(record("edge", KindDispatch, now.Add(-time.Hour)))
	s.Save(record("new", KindDispatch, now))

	ids := []string{}
	for _, r := range s.List("", 0) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"new", "edge"}, ids)

	// every record expired
	now = now.Add(24 * time.Hour)
	s.Save(record("stale", KindDispatch, now.Add(-2*time.Hour)))
	assert.Empty(t, s.List("", 0))
}

func TestMemoryStoreLatestAndFilter(t *testing.T) {
	s := NewMemoryStore(0, 0)
	_, err := s.Latest("")
	require.ErrorIs(t, err, ErrNotFound)

	base := time.Now()
	s.Save(record("b1", KindBriefing, base))
	s.Save(record("d1", KindDispatch, base.Add(time.Second)))
	s.Save(record("d2", KindDispatch, base.Add(2*time.Second)))

	latest, err := s.Latest(KindBriefing)
	require.NoError(t, err)
	assert.Equal(t, "b1", latest.ID)

	latest, err = s.Latest("")
	require.NoError(t, err)
	assert.Equal(t, "d2", latest.ID)

	got := s.List(KindDispatch, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "d2", got[0].ID)

	assert.NotNil(t, s.List("nope", 10))
	assert.Empty(t, s.List("nope", 10))
}
