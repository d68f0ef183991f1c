// verify_combat 无窗口运行一局脚本化的战斗，用于验证战斗核心的完整流程
//
// 脚本玩家依次瞄准最近的敌人开火，弹匣打空后换弹；敌人全部倒下后走向地上的物品并拾取。
//
//	go run ./cmd/verify_combat -ticks 3600 -verbose
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/app"
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/utils"
)

var (
	ticks     = flag.Int("ticks", 3600, "最多运行的 tick 数")
	enemies   = flag.Int("enemies", 3, "敌人数量")
	seed      = flag.Int64("seed", 1, "随机种子")
	combatCfg = flag.String("combat", "data/combat.yaml", "战斗配置文件")
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := logging.New(level, nil)

	rc := &config.RuntimeConfig{
		LogLevel:     level,
		Seed:         *seed,
		TPS:          60,
		CombatConfig: *combatCfg,
		EnemyCount:   *enemies,
	}
	session, err := app.NewSession(rc, nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start session: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	bot := &scriptedPlayer{session: session, logger: logger}
	dt := 1.0 / float64(rc.TPS)
	ran := 0
	for ; ran < *ticks; ran++ {
		if bot.done() {
			break
		}
		bot.step()
		session.Update(dt)
	}

	report(session, ran)
}

// scriptedPlayer 简单的脚本玩家
type scriptedPlayer struct {
	session *app.Session
	firing  bool
	logger  zerolog.Logger
}

func (p *scriptedPlayer) done() bool {
	s := p.session
	return s.Sim.Combat.IsDead(s.Player) || (s.EnemiesAlive() == 0 && p.nearestItem() == ecs.InvalidEntity)
}

func (p *scriptedPlayer) step() {
	s := p.session
	s.Arena.SetMoveInput(0, 0)

	if target := p.nearestEnemy(); target != ecs.InvalidEntity {
		p.aimAt(position(s, target).Add(utils.Vec3{Z: 100}))
		p.fight()
		return
	}
	p.releaseFire()

	item := p.nearestItem()
	if item == ecs.InvalidEntity {
		return
	}
	p.aimAt(position(s, item))
	inv, _ := ecs.GetComponent[*components.InventoryComponent](s.Sim.EntityManager, s.Player)
	if inv != nil && inv.TracedItem == item {
		p.logger.Debug().Uint64("item", uint64(item)).Msg("Picking up traced item")
		s.Sim.Inventory.SelectButtonPressed(s.Player)
		return
	}
	s.Arena.SetMoveInput(1, 0)
}

func (p *scriptedPlayer) fight() {
	s := p.session
	weaponID := s.Sim.Combat.GetEquippedWeapon(s.Player)
	weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.Sim.EntityManager, weaponID)
	if !ok {
		return
	}
	if weapon.Magazine == 0 {
		p.releaseFire()
		s.Sim.Combat.RequestReload(s.Player)
		return
	}
	if !p.firing || !weapon.Automatic {
		s.Sim.Combat.FireButtonPressed(s.Player)
		p.firing = true
	}
	if !weapon.Automatic {
		p.releaseFire()
	}
}

func (p *scriptedPlayer) releaseFire() {
	if p.firing {
		p.session.Sim.Combat.FireButtonReleased(p.session.Player)
		p.firing = false
	}
}

// aimAt 把相机转向世界中的一个点
func (p *scriptedPlayer) aimAt(point utils.Vec3) {
	s := p.session
	player, ok := ecs.GetComponent[*components.PlayerComponent](s.Sim.EntityManager, s.Player)
	if !ok {
		return
	}
	origin, _, ok := s.Arena.DeprojectScreenToWorld(s.Arena.Config().ScreenWidth/2, s.Arena.Config().ScreenHeight/2)
	if !ok {
		return
	}
	d := point.Sub(origin)
	yaw := math.Atan2(d.Y, d.X) * 180 / math.Pi
	pitch := math.Atan2(d.Z, math.Hypot(d.X, d.Y)) * 180 / math.Pi

	yawDelta := math.Mod(yaw-player.CameraYaw+540, 360) - 180
	scale := s.Sim.Combat.LookScale(s.Player)
	if scale <= 0 {
		return
	}
	s.Arena.Turn(yawDelta/scale, (pitch-s.Arena.Pitch())/scale)
}

func (p *scriptedPlayer) nearestEnemy() ecs.EntityID {
	s := p.session
	em := s.Sim.EntityManager
	return nearest(s, ecs.GetEntitiesWith2[*components.EnemyComponent, *components.HealthComponent](em), func(id ecs.EntityID) bool {
		h, _ := ecs.GetComponent[*components.HealthComponent](em, id)
		return !h.Dead
	})
}

func (p *scriptedPlayer) nearestItem() ecs.EntityID {
	s := p.session
	em := s.Sim.EntityManager
	return nearest(s, ecs.GetEntitiesWith1[*components.ItemComponent](em), func(id ecs.EntityID) bool {
		item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
		return item.State == components.ItemStatePickupIdle
	})
}

func nearest(s *app.Session, ids []ecs.EntityID, keep func(ecs.EntityID) bool) ecs.EntityID {
	from := position(s, s.Player)
	best, bestDist := ecs.InvalidEntity, math.Inf(1)
	for _, id := range ids {
		if !keep(id) {
			continue
		}
		if d := position(s, id).Distance(from); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

func position(s *app.Session, id ecs.EntityID) utils.Vec3 {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.Sim.EntityManager, id); ok {
		return tr.Position
	}
	return utils.Vec3{}
}

func report(s *app.Session, ran int) {
	em := s.Sim.EntityManager
	fmt.Printf("ticks run: %d\n", ran)

	if h, ok := ecs.GetComponent[*components.HealthComponent](em, s.Player); ok {
		fmt.Printf("player health: %.0f/%.0f dead=%v\n", h.Current, h.Max, h.Dead)
	}
	kills, err := s.Ledger.Count("enemy")
	if err != nil {
		fmt.Printf("kill ledger error: %v\n", err)
	}
	fmt.Printf("enemies killed: %d, alive: %d\n", kills, s.EnemiesAlive())

	if ledger, ok := ecs.GetComponent[*components.AmmoLedgerComponent](em, s.Player); ok {
		for _, t := range []components.AmmoType{components.Ammo9mm, components.AmmoAR} {
			fmt.Printf("reserve %s: %d\n", t, ledger.Reserve(t))
		}
	}
	if inv, ok := ecs.GetComponent[*components.InventoryComponent](em, s.Player); ok {
		for slot := 0; slot < inv.Len(); slot++ {
			if w, ok := ecs.GetComponent[*components.WeaponComponent](em, inv.ItemAt(slot)); ok {
				fmt.Printf("slot %d: %s %d/%d\n", slot, w.Name, w.Magazine, w.Capacity)
			}
		}
	}
	for _, msg := range s.Messages() {
		fmt.Println("  " + msg)
	}
}
