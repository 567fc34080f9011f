package catching_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/game/catching"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/scheduler"
	"github.com/e9games/creaturebot/store"
	"github.com/e9games/creaturebot/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	catching  *catching.Service
	inventory *inventory.Service
	store     *store.Store
}

func newFixture(t *testing.T, seed int64) *fixture {
	st := store.New(testutil.SetupTestDB(t), zap.NewNop())
	cfg := config.Default().Game
	inv := inventory.New(st, zap.NewNop())
	lim := limiter.New(st, testutil.SetupTestCache(t), cfg, zap.NewNop())
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)
	svc := catching.New(st, inv, lim, sched, cfg, zap.NewNop(), rand.New(rand.NewSource(seed)))
	return &fixture{catching: svc, inventory: inv, store: st}
}

func fillRoster(t *testing.T, f *fixture, userID string, rarity model.Rarity) {
	t.Helper()
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, f.inventory.AddCreature(userID, model.Creature{
			ID: id, Name: id, Rarity: rarity, Level: 1,
			Stats: model.Stats{HP: 50, MaxHP: 50, Attack: 45, Defense: 40},
		}))
	}
}

func TestAttemptCatch_ChargesQuotaRegardless(t *testing.T) {
	f := newFixture(t, 1)

	for i := 0; i < 10; i++ {
		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 10-i-1, res.Remaining)
	}
	res, err := f.catching.AttemptCatch("u1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Nil(t, res.Creature)
}

func TestAttemptCatch_ConcurrentLastSlot(t *testing.T) {
	f := newFixture(t, 1)
	limit := config.Default().Game.CatchLimit

	// Leave exactly one use in the window.
	require.NoError(t, f.store.UpdateUser("u1", func(inv *model.UserInventory) error {
		inv.CatchCount = limit - 1
		inv.QuotaResetAt = time.Now()
		return nil
	}))

	start := make(chan struct{})
	type outcome struct {
		allowed bool
		err     error
	}
	outcomes := make(chan outcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := f.catching.AttemptCatch("u1")
			if err != nil {
				outcomes <- outcome{err: err}
				return
			}
			outcomes <- outcome{allowed: res.Allowed}
		}()
	}
	close(start)
	wg.Wait()
	close(outcomes)

	allowed := 0
	for o := range outcomes {
		require.NoError(t, o.err)
		if o.allowed {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed, "only one request may take the last quota slot")

	inv, err := f.inventory.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, limit, inv.CatchCount)
}

func TestAttemptCatch_SuccessAddsLevelOneAtFullHP(t *testing.T) {
	// Walk seeds until a catch succeeds with room in the roster.
	for seed := int64(0); seed < 50; seed++ {
		f := newFixture(t, seed)
		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.Caught {
			continue
		}
		inv, err := f.inventory.Get("u1")
		require.NoError(t, err)
		list := inv.CreatureList()
		require.Len(t, list, 1)
		assert.Equal(t, 1, list[0].Level)
		assert.Equal(t, list[0].Stats.MaxHP, list[0].Stats.HP)
		assert.Equal(t, 1, inv.TotalCaught)
		assert.Equal(t, 1, inv.CatchCount)
		return
	}
	t.Fatal("no successful catch in 50 seeds")
}

func TestAttemptCatch_FullRosterOffersLowerTiers(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		f := newFixture(t, seed)
		fillRoster(t, f, "u1", model.RarityCommon)

		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.Caught || res.Creature.Rarity == model.RarityCommon {
			continue
		}
		assert.True(t, res.InventoryFull)
		assert.True(t, res.IsBetterTier)
		assert.Len(t, res.LowerTierOptions, 3)

		// The catch is held for the decision window.
		held, err := f.catching.PendingCreature("u1")
		require.NoError(t, err)
		assert.Equal(t, res.Creature.ID, held.ID)
		return
	}
	t.Fatal("no above-common catch in 200 seeds")
}

func TestAttemptCatch_FullRosterEqualTierFlees(t *testing.T) {
	for seed := int64(0); seed < 400; seed++ {
		f := newFixture(t, seed)
		fillRoster(t, f, "u1", model.RarityLegendary)

		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.Caught {
			continue
		}
		// Nothing outranks a legendary roster in the catch pool.
		assert.True(t, res.InventoryFull)
		assert.False(t, res.IsBetterTier)
		assert.Empty(t, res.LowerTierOptions)
		_, err = f.catching.PendingCreature("u1")
		assert.ErrorIs(t, err, store.ErrNotFound)

		inv, err := f.inventory.Get("u1")
		require.NoError(t, err)
		assert.Len(t, inv.CreatureList(), 3)
		return
	}
	t.Fatal("no successful catch in 400 seeds")
}

func TestResolveReplacement(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		f := newFixture(t, seed)
		fillRoster(t, f, "u1", model.RarityCommon)

		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.IsBetterTier {
			continue
		}

		require.NoError(t, f.catching.ResolveReplacement("u1", "r2"))

		inv, err := f.inventory.Get("u1")
		require.NoError(t, err)
		list := inv.CreatureList()
		require.Len(t, list, 3)
		assert.Equal(t, res.Creature.ID, list[1].ID)
		assert.Equal(t, 4, inv.TotalCaught)

		// Hold is consumed; a second resolve fails.
		assert.ErrorIs(t, f.catching.ResolveReplacement("u1", "r1"), store.ErrNotFound)
		return
	}
	t.Fatal("no replacement offer in 200 seeds")
}

func TestResolveReplacement_RejectsIneligibleTarget(t *testing.T) {
	for seed := int64(0); seed < 400; seed++ {
		f := newFixture(t, seed)
		fillRoster(t, f, "u1", model.RarityCommon)
		// Make r3 epic so it can outrank some catches.
		require.NoError(t, f.store.UpdateUser("u1", func(inv *model.UserInventory) error {
			list := inv.CreatureList()
			list[2].Rarity = model.RarityEpic
			inv.SetCreatures(list)
			return nil
		}))

		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.IsBetterTier || res.Creature.Rarity.TierRank() > model.RarityEpic.TierRank() {
			continue
		}
		// r3 is equal-or-higher tier: not an eligible target.
		err = f.catching.ResolveReplacement("u1", "r3")
		assert.ErrorIs(t, err, inventory.ErrCreatureNotFound)
		return
	}
	t.Fatal("no suitable offer in 400 seeds")
}

func TestPendingCreature_LazyExpiry(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		f := newFixture(t, seed)
		fillRoster(t, f, "u1", model.RarityCommon)

		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.IsBetterTier {
			continue
		}

		// Age the hold past its deadline.
		p, err := f.store.GetPendingCreature("u1")
		require.NoError(t, err)
		p.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, f.store.SavePendingCreature(p))

		_, err = f.catching.PendingCreature("u1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return
	}
	t.Fatal("no replacement offer in 200 seeds")
}

func TestSweepExpiredPending(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		f := newFixture(t, seed)
		fillRoster(t, f, "u1", model.RarityCommon)

		res, err := f.catching.AttemptCatch("u1")
		require.NoError(t, err)
		if !res.IsBetterTier {
			continue
		}

		p, err := f.store.GetPendingCreature("u1")
		require.NoError(t, err)
		p.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, f.store.SavePendingCreature(p))

		f.catching.SweepExpiredPending()
		_, err = f.store.GetPendingCreature("u1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return
	}
	t.Fatal("no replacement offer in 200 seeds")
}
