package systems

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// 测试共享的协作者替身与场景搭建函数

type playCall struct {
	actor   ecs.EntityID
	montage string
	section string
}

// fakeAnim 记录所有动画播放请求
type fakeAnim struct {
	calls []playCall
}

func (a *fakeAnim) Play(actor ecs.EntityID, montage, section string) {
	a.calls = append(a.calls, playCall{actor: actor, montage: montage, section: section})
}

func (a *fakeAnim) played(montage string) int {
	n := 0
	for _, c := range a.calls {
		if c.montage == montage {
			n++
		}
	}
	return n
}

// fakeEffects 记录音效和粒子
type fakeEffects struct {
	sounds    []string
	particles []string
}

func (f *fakeEffects) PlaySound(name string, _ utils.Vec3)      { f.sounds = append(f.sounds, name) }
func (f *fakeEffects) SpawnParticles(name string, _ utils.Vec3) { f.particles = append(f.particles, name) }

func (f *fakeEffects) soundCount(name string) int {
	n := 0
	for _, s := range f.sounds {
		if s == name {
			n++
		}
	}
	return n
}

// fakeWorld 所有射线返回同一个结果
type fakeWorld struct {
	hit         game.HitResult
	traces      int
	noDeproject bool
}

func (w *fakeWorld) LineTrace(start, end utils.Vec3) game.HitResult {
	w.traces++
	return w.hit
}

func (w *fakeWorld) DeprojectScreenToWorld(x, y float64) (utils.Vec3, utils.Vec3, bool) {
	if w.noDeproject {
		return utils.Vec3{}, utils.Vec3{}, false
	}
	return utils.Vec3{}, utils.Vec3{X: 1}, true
}

func (w *fakeWorld) ProjectWorldToScreen(loc utils.Vec3) (float64, float64, bool) {
	return loc.X, loc.Y, true
}

func (w *fakeWorld) SocketLocation(actor ecs.EntityID, socket string) (utils.Vec3, bool) {
	return utils.Vec3{Z: 100}, socket != ""
}

// fakeNotifier 统计击杀通知
type fakeNotifier struct {
	kills []ecs.EntityID
}

func (n *fakeNotifier) PawnKilled(victim, instigator ecs.EntityID) {
	n.kills = append(n.kills, victim)
}

// fakeDecider 记录每帧收到的黑板副本
type fakeDecider struct {
	snapshots map[ecs.EntityID]components.BlackboardComponent
	onDecide  func(id ecs.EntityID, bb components.BlackboardComponent, cmd game.EnemyCommands)
}

func (d *fakeDecider) Decide(id ecs.EntityID, bb components.BlackboardComponent, cmd game.EnemyCommands, _ float64) {
	if d.snapshots == nil {
		d.snapshots = make(map[ecs.EntityID]components.BlackboardComponent)
	}
	d.snapshots[id] = bb
	if d.onDecide != nil {
		d.onDecide(id, bb, cmd)
	}
}

type testRig struct {
	sim      *Simulation
	anim     *fakeAnim
	effects  *fakeEffects
	world    *fakeWorld
	notifier *fakeNotifier
	decider  *fakeDecider
	player   ecs.EntityID
}

func loadTestConfig(t *testing.T) *config.CombatConfig {
	t.Helper()
	cfg, err := config.LoadCombatConfig("../../data/combat.yaml")
	if err != nil {
		t.Fatalf("failed to load combat config: %v", err)
	}
	return cfg
}

// newTestRig 创建带默认武器玩家的模拟环境
func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		anim:     &fakeAnim{},
		effects:  &fakeEffects{},
		world:    &fakeWorld{},
		notifier: &fakeNotifier{},
		decider:  &fakeDecider{},
	}
	r.sim = NewSimulation(loadTestConfig(t), nil, Collaborators{
		World:    r.world,
		Anim:     r.anim,
		Effects:  r.effects,
		Notifier: r.notifier,
		Decider:  r.decider,
	}, zerolog.Nop())

	player, err := r.sim.SpawnPlayer(utils.Vec3{})
	if err != nil {
		t.Fatalf("SpawnPlayer failed: %v", err)
	}
	r.player = player
	r.sim.Events.Drain()
	return r
}

func (r *testRig) combat(t *testing.T) *components.CombatComponent {
	t.Helper()
	c, ok := ecs.GetComponent[*components.CombatComponent](r.sim.EntityManager, r.player)
	if !ok {
		t.Fatal("player has no combat component")
	}
	return c
}

func (r *testRig) weapon(t *testing.T) *components.WeaponComponent {
	t.Helper()
	w, ok := ecs.GetComponent[*components.WeaponComponent](r.sim.EntityManager, r.sim.Combat.GetEquippedWeapon(r.player))
	if !ok {
		t.Fatal("player has no equipped weapon")
	}
	return w
}

func (r *testRig) ledger(t *testing.T) *components.AmmoLedgerComponent {
	t.Helper()
	l, ok := ecs.GetComponent[*components.AmmoLedgerComponent](r.sim.EntityManager, r.player)
	if !ok {
		t.Fatal("player has no ammo ledger")
	}
	return l
}

func (r *testRig) inventory(t *testing.T) *components.InventoryComponent {
	t.Helper()
	inv, ok := ecs.GetComponent[*components.InventoryComponent](r.sim.EntityManager, r.player)
	if !ok {
		t.Fatal("player has no inventory")
	}
	return inv
}

func (r *testRig) spawnEnemy(t *testing.T) ecs.EntityID {
	t.Helper()
	id, err := r.sim.SpawnEnemy("grunt", utils.Vec3{X: 500}, 0)
	if err != nil {
		t.Fatalf("SpawnEnemy failed: %v", err)
	}
	return id
}

func itemOf(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.ItemComponent {
	t.Helper()
	item, ok := ecs.GetComponent[*components.ItemComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no item component", id)
	}
	return item
}

func healthOf(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.HealthComponent {
	t.Helper()
	h, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no health component", id)
	}
	return h
}
