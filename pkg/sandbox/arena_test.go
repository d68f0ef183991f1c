package sandbox

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/systems"
	"github.com/decker502/shooter/pkg/utils"
)

type sandboxRig struct {
	sim     *systems.Simulation
	arena   *Arena
	feed    *Feed
	decider *ChaseDecider
	player  ecs.EntityID
}

func newSandboxRig(t *testing.T) *sandboxRig {
	t.Helper()
	cfg, err := config.LoadCombatConfig("../../data/combat.yaml")
	if err != nil {
		t.Fatalf("failed to load combat config: %v", err)
	}
	arena := NewArena(DefaultArenaConfig(), zerolog.Nop())
	feed := NewFeed(16, zerolog.Nop())
	decider := NewChaseDecider(DefaultChaseConfig(), zerolog.Nop())

	sim := systems.NewSimulation(cfg, rand.New(rand.NewSource(3)), systems.Collaborators{
		World:   arena,
		Anim:    feed,
		Effects: feed,
		Decider: decider,
	}, zerolog.Nop())
	player, err := sim.SpawnPlayer(utils.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	arena.Attach(sim, player)
	decider.Attach(sim.EntityManager)

	// 测试里不让玩家被打出硬直
	if h, ok := ecs.GetComponent[*components.HealthComponent](sim.EntityManager, player); ok {
		h.StunChance = 0
	}
	return &sandboxRig{sim: sim, arena: arena, feed: feed, decider: decider, player: player}
}

func (r *sandboxRig) health(t *testing.T, id ecs.EntityID) *components.HealthComponent {
	t.Helper()
	h, ok := ecs.GetComponent[*components.HealthComponent](r.sim.EntityManager, id)
	if !ok {
		t.Fatalf("entity %d has no health", id)
	}
	return h
}

func near(a, b utils.Vec3, eps float64) bool {
	return a.Distance(b) <= eps
}

func TestDeproject_CenterLooksForward(t *testing.T) {
	r := newSandboxRig(t)
	cfg := r.arena.Config()

	origin, dir, ok := r.arena.DeprojectScreenToWorld(cfg.ScreenWidth/2, cfg.ScreenHeight/2)
	if !ok {
		t.Fatal("deprojection should succeed")
	}
	if !near(dir, utils.Vec3{X: 1}, 1e-9) {
		t.Errorf("expected forward direction, got %+v", dir)
	}
	want := utils.Vec3{X: -cfg.CameraDistance, Y: -cfg.ShoulderOffset, Z: cfg.CameraHeight}
	if !near(origin, want, 1e-9) {
		t.Errorf("expected camera at %+v, got %+v", want, origin)
	}
}

func TestProject_RoundTrip(t *testing.T) {
	r := newSandboxRig(t)
	r.arena.Turn(35, 10)

	points := []struct{ x, y float64 }{{640, 360}, {100, 50}, {1200, 700}, {900, 200}}
	for _, p := range points {
		origin, dir, ok := r.arena.DeprojectScreenToWorld(p.x, p.y)
		if !ok {
			t.Fatal("deprojection should succeed")
		}
		x, y, ok := r.arena.ProjectWorldToScreen(origin.Add(dir.Scale(1000)))
		if !ok {
			t.Fatalf("point in front of the camera should project")
		}
		if math.Abs(x-p.x) > 1e-6 || math.Abs(y-p.y) > 1e-6 {
			t.Errorf("round trip (%v,%v) -> (%v,%v)", p.x, p.y, x, y)
		}
	}

	if _, _, ok := r.arena.ProjectWorldToScreen(utils.Vec3{X: -5000}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestLineTrace(t *testing.T) {
	r := newSandboxRig(t)
	enemy, err := r.sim.SpawnEnemy("grunt", utils.Vec3{X: 500}, 180)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		start, end utils.Vec3
		wantActor  ecs.EntityID
		wantBone   string
		wantX      float64
	}{
		{"body", utils.Vec3{Z: 100}, utils.Vec3{X: 1000, Z: 100}, enemy, "spine_01", 460},
		{"head", utils.Vec3{Z: 170}, utils.Vec3{X: 1000, Z: 170}, enemy, "head", 460},
		{"over the top", utils.Vec3{Z: 250}, utils.Vec3{X: 1000, Z: 250}, ecs.InvalidEntity, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := r.arena.LineTrace(tt.start, tt.end)
			if hit.Actor != tt.wantActor || hit.Bone != tt.wantBone {
				t.Fatalf("unexpected hit %+v", hit)
			}
			if tt.wantActor != ecs.InvalidEntity && math.Abs(hit.Location.X-tt.wantX) > 1e-6 {
				t.Errorf("expected hit at X=%v, got %v", tt.wantX, hit.Location.X)
			}
		})
	}

	ground := r.arena.LineTrace(utils.Vec3{X: -200, Z: 100}, utils.Vec3{X: -200, Z: -100})
	if !ground.Blocking || ground.Actor != ecs.InvalidEntity || math.Abs(ground.Location.Z) > 1e-9 {
		t.Errorf("expected ground hit, got %+v", ground)
	}
}

func TestSegmentCylinder_StartInside(t *testing.T) {
	tHit, ok := segmentCylinder(utils.Vec3{Z: 50}, utils.Vec3{X: 100, Z: 50}, utils.Vec3{}, 40, 180)
	if !ok || tHit != 0 {
		t.Errorf("expected t=0 hit, got %v %v", tHit, ok)
	}
}

// TestFire_HitsEnemyThroughArena 通过相机射线和枪口射线命中前方的敌人
func TestFire_HitsEnemyThroughArena(t *testing.T) {
	r := newSandboxRig(t)
	enemy, err := r.sim.SpawnEnemy("grunt", utils.Vec3{X: 800, Y: -60}, 180)
	if err != nil {
		t.Fatal(err)
	}
	r.arena.Turn(0, -5)
	r.sim.Update(0.016)

	r.sim.Combat.RequestFire(r.player)

	if got := r.health(t, enemy); got.Max-got.Current != 20 {
		t.Errorf("expected 20 body damage, got %v", got.Max-got.Current)
	}
	if r.feed.Count("ImpactCue") != 1 {
		t.Error("impact sound should be requested")
	}
}

func TestItemOverlap_CountsEnterAndLeave(t *testing.T) {
	r := newSandboxRig(t)
	ammo, _ := r.sim.SpawnAmmo("9mm", utils.Vec3{X: 100})
	inv, _ := ecs.GetComponent[*components.InventoryComponent](r.sim.EntityManager, r.player)

	r.sim.Update(0.016)
	if inv.OverlappedItemCount != 1 {
		t.Fatalf("expected 1 overlapping item, got %d", inv.OverlappedItemCount)
	}

	tr, _ := ecs.GetComponent[*components.TransformComponent](r.sim.EntityManager, ammo)
	tr.Position = utils.Vec3{X: 5000}
	r.sim.Update(0.016)
	if inv.OverlappedItemCount != 0 {
		t.Errorf("expected 0 overlapping items, got %d", inv.OverlappedItemCount)
	}
}

func TestMove_FollowsCamera(t *testing.T) {
	r := newSandboxRig(t)
	r.arena.Turn(90, 0)
	r.arena.SetMoveInput(1, 0)

	r.sim.Update(1)

	tr, _ := ecs.GetComponent[*components.TransformComponent](r.sim.EntityManager, r.player)
	if !near(tr.Position, utils.Vec3{Y: r.arena.Config().WalkSpeed}, 1e-6) {
		t.Errorf("unexpected position %+v", tr.Position)
	}
	if tr.Yaw != 90 {
		t.Errorf("character should face the camera yaw, got %v", tr.Yaw)
	}
}

func TestPlayerDeath_FinishesAfterAnimation(t *testing.T) {
	r := newSandboxRig(t)
	r.sim.Damage.ApplyDamage(r.player, 1000, ecs.InvalidEntity)
	combat, _ := ecs.GetComponent[*components.CombatComponent](r.sim.EntityManager, r.player)

	r.sim.Update(0.5)
	if combat.InputDisabled {
		t.Fatal("input should stay enabled during the death animation")
	}
	r.sim.Update(r.arena.Config().PlayerDeathFinish)
	if !combat.InputDisabled {
		t.Error("input should be disabled after the death animation")
	}

	r.arena.SetMoveInput(1, 0)
	r.sim.Update(1)
	tr, _ := ecs.GetComponent[*components.TransformComponent](r.sim.EntityManager, r.player)
	if tr.Position.Length() != 0 {
		t.Error("dead player must not move")
	}
}
