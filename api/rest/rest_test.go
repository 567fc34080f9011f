package rest_test

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/e9games/creaturebot/api/rest"
	"github.com/e9games/creaturebot/config"
	"github.com/e9games/creaturebot/game/adventure"
	"github.com/e9games/creaturebot/game/boss"
	"github.com/e9games/creaturebot/game/catching"
	"github.com/e9games/creaturebot/game/challenge"
	"github.com/e9games/creaturebot/game/gym"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	"github.com/e9games/creaturebot/middleware"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/scheduler"
	"github.com/e9games/creaturebot/store"
	"github.com/e9games/creaturebot/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	router *gin.Engine
	store  *store.Store
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)
	st := store.New(testutil.SetupTestDB(t), zap.NewNop())
	ca := testutil.SetupTestCache(t)
	full := config.Default()
	full.Security.JWTSecret = "rest-test-secret"
	cfg := full.Game
	log := zap.NewNop()
	sched := scheduler.New(log)
	t.Cleanup(sched.Stop)

	inv := inventory.New(st, log)
	lim := limiter.New(st, ca, cfg, log)
	rng := func(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }
	catchSvc := catching.New(st, inv, lim, sched, cfg, log, rng(1))
	chalSvc := challenge.New(st, inv, lim, sched, cfg, log, rng(2))
	advSvc := adventure.New(st, inv, lim, cfg, log, rng(3))
	bossSvc := boss.New(st, ca, inv, lim, cfg, log, rng(4))
	gymSvc := gym.New(st, inv, lim, cfg, log, rng(5))

	catchH := rest.NewCatchHandler(catchSvc)
	invH := rest.NewInventoryHandler(inv)
	chalH := rest.NewChallengeHandler(chalSvc)
	advH := rest.NewAdventureHandler(advSvc)
	bossH := rest.NewBossHandler(bossSvc)
	gymH := rest.NewGymHandler(gymSvc)
	adminH := rest.NewAdminHandler(st, sched, full.Security, log)

	r := gin.New()
	api := r.Group("/api")
	{
		users := api.Group("/users")
		users.POST("/:id/catch", catchH.Attempt)
		users.GET("/:id/catch/pending", catchH.Pending)
		users.POST("/:id/catch/replace", catchH.Replace)
		users.DELETE("/:id/catch/pending", catchH.Release)
		users.GET("/:id/inventory", invH.Get)
		users.POST("/:id/lock", invH.Lock)
		users.DELETE("/:id/lock", invH.Unlock)
		users.POST("/:id/adventure", advH.Go)
		users.POST("/:id/items/use", advH.UseItem)
		users.POST("/:id/challenge/accept", chalH.Accept)
		users.POST("/:id/challenge/decline", chalH.Decline)
		users.GET("/:id/challenge", chalH.Pending)
		users.POST("/:id/botbattle", chalH.BotBattle)

		api.POST("/challenges", chalH.Create)
		api.POST("/challenges/:id/creature", chalH.SelectCreature)
		api.POST("/challenges/:id/resolve", chalH.Resolve)

		api.POST("/boss/spawn", bossH.Spawn)
		api.GET("/boss", bossH.Status)
		api.POST("/boss/attack", bossH.Attack)

		api.POST("/gym/start", gymH.Start)
		api.GET("/gym", gymH.Status)
		api.POST("/gym/attack", gymH.Attack)

		admin := api.Group("/admin")
		admin.POST("/users/:id/reset-inventory", adminH.ResetInventory)
		admin.POST("/users/:id/reset-all", adminH.ResetAll)
		admin.POST("/users/:id/reset-quotas", adminH.ResetQuotas)
		admin.POST("/users/:id/reset-catch", adminH.ResetCatch)
		admin.POST("/users/:id/reset-badges", adminH.ResetBadges)
		admin.POST("/badges/grant", adminH.GrantBadges)
		admin.DELETE("/challenges", adminH.ClearChallenges)
		admin.POST("/token", adminH.MintToken)
	}
	return &env{router: r, store: st}
}

func (e *env) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func giveCreature(t *testing.T, e *env, userID, creatureID string, hp, attack int) {
	t.Helper()
	err := e.store.UpdateUser(userID, func(inv *model.UserInventory) error {
		inv.SetCreatures(append(inv.CreatureList(), model.Creature{
			ID: creatureID, Name: "test-" + creatureID, Rarity: model.RarityCommon,
			Level: 1, Stats: model.Stats{HP: hp, MaxHP: hp, Attack: attack, Defense: 5},
			CaughtAt: time.Now(),
		}))
		return nil
	})
	require.NoError(t, err)
}

func TestCatchEndpoint(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/users/alice/catch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(9), resp["remaining"])
	assert.NotNil(t, resp["creature"])

	// Quota depletion surfaces as 429.
	for i := 0; i < 9; i++ {
		w = e.do(http.MethodPost, "/api/users/alice/catch", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = e.do(http.MethodPost, "/api/users/alice/catch", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestInventoryAndLockEndpoints(t *testing.T) {
	e := newEnv(t)
	giveCreature(t, e, "alice", "a1", 50, 10)

	w := e.do(http.MethodGet, "/api/users/alice/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Len(t, resp["creatures"], 1)

	w = e.do(http.MethodPost, "/api/users/alice/lock", map[string]string{"creature_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/api/users/alice/lock", map[string]string{"creature_id": "a1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/users/alice/inventory", nil)
	resp = decode(t, w)
	assert.Equal(t, "a1", resp["locked_creature_id"])

	w = e.do(http.MethodDelete, "/api/users/alice/lock", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestChallengeEndpoints_FullFlow(t *testing.T) {
	e := newEnv(t)
	giveCreature(t, e, "alice", "a1", 500, 100)
	giveCreature(t, e, "bob", "b1", 10, 1)

	w := e.do(http.MethodPost, "/api/challenges", map[string]string{
		"challenger_id": "alice", "opponent_id": "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	chID := decode(t, w)["id"].(string)

	// Self-challenge is a 400.
	w = e.do(http.MethodPost, "/api/challenges", map[string]string{
		"challenger_id": "carol", "opponent_id": "carol",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/challenges/"+chID+"/creature", map[string]string{
		"side": "challenger", "user_id": "alice", "creature_id": "a1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/users/bob/challenge", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/users/bob/challenge/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/challenges/"+chID+"/creature", map[string]string{
		"side": "opponent", "user_id": "bob", "creature_id": "b1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/challenges/"+chID+"/resolve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "alice", resp["winner_id"])
}

func TestChallengeDecline(t *testing.T) {
	e := newEnv(t)
	giveCreature(t, e, "alice", "a1", 500, 100)

	w := e.do(http.MethodPost, "/api/challenges", map[string]string{
		"challenger_id": "alice", "opponent_id": "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodPost, "/api/users/bob/challenge/decline", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/users/bob/challenge", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdventureEndpoints(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/users/alice/adventure", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	giveCreature(t, e, "alice", "a1", 50, 10)
	giveCreature(t, e, "alice", "a2", 50, 10)
	w = e.do(http.MethodPost, "/api/users/alice/adventure", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Cooldown surfaces as 429.
	w = e.do(http.MethodPost, "/api/users/alice/adventure", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = e.do(http.MethodPost, "/api/users/alice/items/use", map[string]any{
		"item_index": 0, "creature_id": "a1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code) // no items yet
}

func TestBossEndpoints(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/boss", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/api/boss/spawn", map[string]string{"user_id": "alice"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodPost, "/api/boss/spawn", map[string]string{"user_id": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)

	giveCreature(t, e, "alice", "a1", 1000, 10)
	w = e.do(http.MethodPost, "/api/boss/attack", map[string]string{
		"user_id": "alice", "creature_id": "a1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/boss/attack", map[string]string{
		"user_id": "alice", "creature_id": "a1",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = e.do(http.MethodGet, "/api/boss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.NotNil(t, resp["boss"])
}

func TestGymEndpoints(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/gym", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/api/gym/start", map[string]string{"user_id": "alice"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodPost, "/api/gym/start", map[string]string{"user_id": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)

	giveCreature(t, e, "alice", "a1", 1000, 10)
	w = e.do(http.MethodPost, "/api/gym/attack", map[string]string{
		"user_id": "alice", "creature_id": "a1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/gym", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "active", resp["status"])
}

func TestAdminEndpoints(t *testing.T) {
	e := newEnv(t)
	giveCreature(t, e, "alice", "a1", 50, 10)

	w := e.do(http.MethodPost, "/api/admin/users/alice/reset-inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/users/alice/inventory", nil)
	resp := decode(t, w)
	assert.Empty(t, resp["creatures"])

	w = e.do(http.MethodPost, "/api/admin/badges/grant", map[string]any{
		"gym_id": "gym-1", "user_ids": []string{"alice", "bob"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["granted"])

	w = e.do(http.MethodGet, "/api/users/bob/inventory", nil)
	resp = decode(t, w)
	assert.Len(t, resp["badges"], 1)

	w = e.do(http.MethodPost, "/api/admin/users/bob/reset-badges", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodGet, "/api/users/bob/inventory", nil)
	resp = decode(t, w)
	assert.Empty(t, resp["badges"])

	w = e.do(http.MethodDelete, "/api/admin/challenges", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminMintToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/admin/token", map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/admin/token", map[string]any{"service": "discord-gateway"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Positive(t, resp["expires_in"])

	claims, err := middleware.ParseToken(resp["token"].(string), "rest-test-secret")
	require.NoError(t, err)
	assert.Equal(t, "discord-gateway", claims.Service)
}
