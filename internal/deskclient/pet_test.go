package deskclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/pending"
	"github.com/costalopes/focusgato/internal/pomodoro"
)

type pushRecorder struct {
	statusPushes []map[string]any
	hungryPushes []map[string]any
	actions      []pending.Action
}

func (r *pushRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/api/cat-status":
			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			r.statusPushes = append(r.statusPushes, body)
		case "/api/cat-hungry":
			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			r.hungryPushes = append(r.hungryPushes, body)
		case "/api/pending-actions":
			actions := r.actions
			r.actions = nil
			if actions == nil {
				actions = []pending.Action{}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"actions": actions})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}
}

func newTestPet(t *testing.T) (*Pet, *pushRecorder, *Client) {
	rec := &pushRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "s3cret", quietLog())
	return NewPet(client, "ana", quietLog()), rec, client
}

func TestPet_FeedAppliesSharedRulesAndPushes(t *testing.T) {
	pet, rec, _ := newTestPet(t)

	state := pet.Feed(context.Background())

	assert.Equal(t, 70+cat.FeedHappiness, state.Happiness)
	assert.Equal(t, 70+cat.FeedEnergy, state.Energy)
	assert.Equal(t, cat.MoodEating, state.Mood)
	assert.Equal(t, 5, pet.Hunger(), "30 - 25")

	require.Len(t, rec.statusPushes, 1)
	assert.Equal(t, float64(state.Happiness), rec.statusPushes[0]["happiness"])
}

func TestPet_CuddleGainsAffectionAndXP(t *testing.T) {
	pet, rec, _ := newTestPet(t)

	state := pet.Cuddle(context.Background())

	assert.Equal(t, 70+cat.PetHappiness, state.Happiness)
	assert.Equal(t, cat.MoodHappy, state.Mood)
	require.Len(t, rec.statusPushes, 1)
}

func TestPet_LevelUp(t *testing.T) {
	pet, _, _ := newTestPet(t)

	// Level 1 needs 100 XP; a feed gives 10.
	for range 10 {
		pet.Feed(context.Background())
	}
	assert.Equal(t, 2, pet.Level())
}

func TestPet_HungryAlertLatchesUntilFeed(t *testing.T) {
	pet, rec, _ := newTestPet(t)
	ctx := context.Background()

	pet.AdvanceHunger(ctx, 60) // 30 -> 90, crosses threshold
	pet.AdvanceHunger(ctx, 5)  // still hungry, no second alert
	require.Len(t, rec.hungryPushes, 1)
	assert.Equal(t, string(cat.MoodHungry), rec.statusPushes[len(rec.statusPushes)-1]["mood"])

	pet.Feed(ctx)
	pet.AdvanceHunger(ctx, 90)
	assert.Len(t, rec.hungryPushes, 2, "feed unlatches the alert")
}

func TestPoller_StartPomodoroLastWriteWins(t *testing.T) {
	pet, rec, client := newTestPet(t)
	rec.actions = []pending.Action{
		{ID: "1", Type: pending.TypeStartPomodoro, User: "ana", Mode: pomodoro.ModeFocus},
		{ID: "2", Type: pending.TypeStartPomodoro, User: "ana", Mode: pomodoro.ModeShort},
	}

	timer := pomodoro.NewTimer()
	poller := NewPoller(client, pet, timer, 0, quietLog())
	poller.Poll(context.Background())

	assert.Equal(t, pomodoro.ModeShort, timer.Mode())
	assert.Equal(t, pomodoro.ShortDuration, timer.Remaining(), "start resets to the full mode duration")
	assert.True(t, timer.Running())
}

func TestPoller_AppliesFeedActionLocally(t *testing.T) {
	pet, rec, client := newTestPet(t)
	rec.actions = []pending.Action{
		{ID: "1", Type: pending.TypeFeedCat, User: "ana"},
	}

	poller := NewPoller(client, pet, pomodoro.NewTimer(), 0, quietLog())
	poller.Poll(context.Background())

	assert.Equal(t, 70+cat.FeedHappiness, pet.Snapshot().Happiness)
	require.Len(t, rec.statusPushes, 1, "local apply pushes the snapshot back")
}

func TestPoller_IgnoresBadMode(t *testing.T) {
	pet, rec, client := newTestPet(t)
	rec.actions = []pending.Action{
		{ID: "1", Type: pending.TypeStartPomodoro, User: "ana", Mode: "nap"},
	}

	timer := pomodoro.NewTimer()
	poller := NewPoller(client, pet, timer, 0, quietLog())
	poller.Poll(context.Background())

	assert.False(t, timer.Running())
}
