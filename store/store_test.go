package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/store"
	"github.com/e9games/creaturebot/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *store.Store {
	return store.New(testutil.SetupTestDB(t), zap.NewNop())
}

func TestGetInventory_LazyCreate(t *testing.T) {
	s := newStore(t)

	inv, err := s.GetInventory("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", inv.UserID)
	assert.Empty(t, inv.CreatureList())
	assert.Zero(t, inv.TotalCaught)

	// Second read returns the same row, not a fresh one.
	inv.TotalCaught = 5
	require.NoError(t, s.DB().Save(inv).Error)
	again, err := s.GetInventory("u1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.TotalCaught)
}

func TestUpdateUser_NoWriteOnError(t *testing.T) {
	s := newStore(t)

	err := s.UpdateUser("u1", func(inv *model.UserInventory) error {
		inv.TotalCaught = 99
		return assert.AnError
	})
	require.Error(t, err)

	inv, err := s.GetInventory("u1")
	require.NoError(t, err)
	assert.Zero(t, inv.TotalCaught)
}

func TestUpdateUser_SerializesConcurrentWrites(t *testing.T) {
	s := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.UpdateUser("u1", func(inv *model.UserInventory) error {
				inv.TotalCaught++
				return nil
			})
		}()
	}
	wg.Wait()

	inv, err := s.GetInventory("u1")
	require.NoError(t, err)
	assert.Equal(t, 20, inv.TotalCaught)
}

func TestUpdateTwoUsers_SameOrderNoDeadlock(t *testing.T) {
	s := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			a, b := "u1", "u2"
			if flip {
				a, b = b, a
			}
			_ = s.UpdateTwoUsers(a, b, func(x, y *model.UserInventory) error {
				x.TotalBattles++
				y.TotalBattles++
				return nil
			})
		}(i%2 == 0)
	}
	wg.Wait()

	inv, err := s.GetInventory("u1")
	require.NoError(t, err)
	assert.Equal(t, 10, inv.TotalBattles)
}

func TestBoss_SingletonLifecycle(t *testing.T) {
	s := newStore(t)

	_, err := s.GetBoss()
	assert.ErrorIs(t, err, store.ErrNotFound)

	created, err := s.SpawnBoss(&model.BossState{ID: "b1", Name: "Medusa", HP: 1200, MaxHP: 1200, Attack: 400, Defense: 7})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.SpawnBoss(&model.BossState{ID: "b2", Name: "Pepe", HP: 1000, MaxHP: 1000, Attack: 300, Defense: 5})
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, s.UpdateBoss(func(b *model.BossState) (bool, error) {
		b.HP -= 200
		return false, nil
	}))
	b, err := s.GetBoss()
	require.NoError(t, err)
	assert.Equal(t, 1000, b.HP)

	require.NoError(t, s.UpdateBoss(func(b *model.BossState) (bool, error) {
		b.HP = 0
		return true, nil
	}))
	_, err = s.GetBoss()
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Attacks landing after the kill see the boss gone.
	err = s.UpdateBoss(func(b *model.BossState) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBoss_OnlyOneKillingBlow(t *testing.T) {
	s := newStore(t)

	_, err := s.SpawnBoss(&model.BossState{ID: "b1", Name: "Medusa", HP: 100, MaxHP: 100, Attack: 400, Defense: 7})
	require.NoError(t, err)

	kills := 0
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.UpdateBoss(func(b *model.BossState) (bool, error) {
				b.HP -= 60
				if b.HP <= 0 {
					mu.Lock()
					kills++
					mu.Unlock()
					return true, nil
				}
				return false, nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, kills)
}

func TestChallenge_ActiveQueries(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.CreateChallenge(&model.Challenge{
		ID: "ch1", ChallengerID: "u1", OpponentID: "u2", Status: model.ChallengePending,
	}))

	// Either side of the pair sees the same active challenge.
	for _, userID := range []string{"u1", "u2"} {
		ch, err := s.ActiveChallengeForUser(userID)
		require.NoError(t, err)
		assert.Equal(t, "ch1", ch.ID)
	}

	// Terminal statuses are invisible to active queries.
	require.NoError(t, s.UpdateChallenge("ch1", func(c *model.Challenge) error {
		c.Status = model.ChallengeDeclined
		return nil
	}))
	_, err := s.ActiveChallengeForUser("u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The record itself survives for history.
	kept, err := s.GetChallenge("ch1")
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeDeclined, kept.Status)
}

func TestGym_SingletonAndParticipants(t *testing.T) {
	s := newStore(t)

	g := &model.GymBattle{
		ID: "g1", Status: model.GymActive, CurrentRound: 1,
		StartedAt: time.Now(), Deadline: time.Now().Add(48 * time.Hour),
	}
	started, err := s.StartGym(g)
	require.NoError(t, err)
	assert.True(t, started)

	started, err = s.StartGym(&model.GymBattle{ID: "g2", Status: model.GymActive})
	require.NoError(t, err)
	assert.False(t, started)

	require.NoError(t, s.AddGymParticipant("g1", "u1"))
	require.NoError(t, s.AddGymParticipant("g1", "u1")) // duplicate collapses
	require.NoError(t, s.AddGymParticipant("g1", "u2"))
	users, err := s.GymParticipants("g1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)

	require.NoError(t, s.UpdateActiveGym(func(g *model.GymBattle) error {
		g.Status = model.GymCompleted
		return nil
	}))
	_, err = s.GetActiveGym()
	assert.ErrorIs(t, err, store.ErrNotFound)

	kept, err := s.GetGym("g1")
	require.NoError(t, err)
	assert.Equal(t, model.GymCompleted, kept.Status)
}

func TestAttackStats_TouchAndGet(t *testing.T) {
	s := newStore(t)

	st, err := s.GetAttackStats("u1", model.AttackBoss)
	require.NoError(t, err)
	assert.Zero(t, st.Attacks)

	now := time.Now()
	require.NoError(t, s.TouchAttackStats("u1", model.AttackBoss, 120, now))
	require.NoError(t, s.TouchAttackStats("u1", model.AttackBoss, 80, now))

	st, err = s.GetAttackStats("u1", model.AttackBoss)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Attacks)
	assert.Equal(t, int64(200), st.TotalDamage)

	// Gym attacks track separately.
	st, err = s.GetAttackStats("u1", model.AttackGym)
	require.NoError(t, err)
	assert.Zero(t, st.Attacks)
}
