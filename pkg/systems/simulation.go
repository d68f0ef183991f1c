package systems

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/entities"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/metrics"
	"github.com/decker502/shooter/pkg/utils"
)

// Collaborators 战斗核心依赖的外部协作者，均可为 nil
type Collaborators struct {
	World    game.WorldQuery
	Anim     game.AnimationPlayer
	Effects  game.Effects
	Notifier game.KillNotifier
	Decider  game.AIDecider
	Metrics  *metrics.CombatMetrics
}

// Simulation 组装所有战斗系统并按固定顺序推进
//
// 每个 tick 的顺序：计时器回调 → 移动/相机 → 物品检测 → 物品插值 → 敌人 AI → 飘字 → 清理实体。
// 插值读取的是本 tick 移动之后的角色位置。
type Simulation struct {
	EntityManager *ecs.EntityManager
	Timers        *game.TimerManager
	Events        *game.EventQueue

	Combat    *CombatSystem
	Inventory *InventorySystem
	Interp    *ItemInterpSystem
	Damage    *DamageSystem
	Enemies   *EnemyCombatSystem
	HitLabels *HitLabelSystem

	config   *config.CombatConfig
	movement func(deltaTime float64)
	logger   zerolog.Logger
}

// NewSimulation 创建战斗模拟；rng 为 nil 时使用固定种子
func NewSimulation(cfg *config.CombatConfig, rng *rand.Rand, collab Collaborators, logger zerolog.Logger) *Simulation {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	em := ecs.NewEntityManager()
	timers := game.NewTimerManager()
	events := game.NewEventQueue()

	combat := NewCombatSystem(em, timers, logger)
	inventory := NewInventorySystem(em, timers, combat, logger)
	interp := NewItemInterpSystem(em, timers, inventory, cfg.Interp.HorizontalSpeed, logger)
	damage := NewDamageSystem(em, rng, logger)
	enemies := NewEnemyCombatSystem(em, timers, rng, cfg.AttackSections, logger)
	hitLabels := NewHitLabelSystem(em, collab.World)

	combat.SetAnimationPlayer(collab.Anim)
	combat.SetEffects(collab.Effects)
	combat.SetWorldQuery(collab.World)
	combat.SetEventQueue(events)
	combat.SetMetrics(collab.Metrics)
	combat.SetDamageSystem(damage)

	inventory.SetInterpolator(interp)
	inventory.SetWorldQuery(collab.World)
	inventory.SetEffects(collab.Effects)
	inventory.SetEventQueue(events)
	inventory.SetMetrics(collab.Metrics)
	inventory.SetSoundResetTimes(cfg.Player.PickupSoundResetTime, cfg.Player.EquipSoundResetTime)

	interp.SetEffects(collab.Effects)

	damage.SetCombatSystem(combat)
	damage.SetEnemyCombatSystem(enemies)
	damage.SetWorldQuery(collab.World)
	damage.SetEffects(collab.Effects)
	damage.SetKillNotifier(collab.Notifier)
	damage.SetEventQueue(events)
	damage.SetMetrics(collab.Metrics)

	enemies.SetAnimationPlayer(collab.Anim)
	enemies.SetEventQueue(events)
	enemies.SetMetrics(collab.Metrics)
	enemies.SetDamageSystem(damage)
	enemies.SetDecider(collab.Decider)

	return &Simulation{
		EntityManager: em,
		Timers:        timers,
		Events:        events,
		Combat:        combat,
		Inventory:     inventory,
		Interp:        interp,
		Damage:        damage,
		Enemies:       enemies,
		HitLabels:     hitLabels,
		config:        cfg,
		logger:        logging.ForSystem(logger, "Simulation"),
	}
}

// Config 返回战斗配置
func (s *Simulation) Config() *config.CombatConfig { return s.config }

// SetMovementHook 设置每 tick 在物品检测之前调用的移动/相机更新
func (s *Simulation) SetMovementHook(fn func(deltaTime float64)) { s.movement = fn }

// Update 推进一个 tick
func (s *Simulation) Update(deltaTime float64) {
	s.Timers.Update(deltaTime)
	if s.movement != nil {
		s.movement(deltaTime)
	}
	s.Inventory.Update(deltaTime)
	s.Interp.Update(deltaTime)
	s.Enemies.Update(deltaTime)
	s.HitLabels.Update(deltaTime)
	for _, id := range s.EntityManager.MarkedEntities() {
		s.Timers.ClearOwner(id)
	}
	s.EntityManager.RemoveMarkedEntities()
}

// SpawnPlayer 创建玩家并装备默认武器
func (s *Simulation) SpawnPlayer(position utils.Vec3) (ecs.EntityID, error) {
	id, err := entities.NewPlayer(s.EntityManager, s.config, position)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to spawn player: %w", err)
	}
	if name := s.config.Player.DefaultWeapon; name != "" {
		weapon, err := entities.NewWeapon(s.EntityManager, s.config, name, position)
		if err != nil {
			return ecs.InvalidEntity, fmt.Errorf("failed to create default weapon: %w", err)
		}
		s.Inventory.EquipStartingWeapon(id, weapon)
	}
	s.logger.Info().Uint64("player", uint64(id)).Str("weapon", s.config.Player.DefaultWeapon).Msg("Player spawned")
	return id, nil
}

// SpawnEnemy 创建敌人
func (s *Simulation) SpawnEnemy(name string, position utils.Vec3, yaw float64) (ecs.EntityID, error) {
	id, err := entities.NewEnemy(s.EntityManager, s.config, name, position, yaw)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to spawn enemy: %w", err)
	}
	return id, nil
}

// SpawnWeapon 在地上放一把武器
func (s *Simulation) SpawnWeapon(name string, position utils.Vec3) (ecs.EntityID, error) {
	return entities.NewWeapon(s.EntityManager, s.config, name, position)
}

// SpawnAmmo 在地上放一个弹药箱
func (s *Simulation) SpawnAmmo(ammoType string, position utils.Vec3) (ecs.EntityID, error) {
	return entities.NewAmmoPickup(s.EntityManager, s.config, ammoType, position)
}

// CaptureLoadout 导出玩家当前的装备，用于存档
func (s *Simulation) CaptureLoadout(player ecs.EntityID) (*game.Loadout, error) {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.EntityManager, player)
	if !ok {
		return nil, fmt.Errorf("entity %d has no inventory", player)
	}

	loadout := &game.Loadout{
		Reserves:     make(map[string]int),
		Weapons:      make([]game.LoadoutSlot, inv.Len()),
		EquippedSlot: -1,
	}
	if ledger, ok := ecs.GetComponent[*components.AmmoLedgerComponent](s.EntityManager, player); ok {
		for ammoType, n := range ledger.Reserves {
			loadout.Reserves[string(ammoType)] = n
		}
	}
	if health, ok := ecs.GetComponent[*components.HealthComponent](s.EntityManager, player); ok {
		loadout.Health = health.Current
	}

	equipped := s.Combat.GetEquippedWeapon(player)
	for slot, itemID := range inv.Slots {
		weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.EntityManager, itemID)
		if !ok {
			continue
		}
		entry := game.LoadoutSlot{Weapon: weapon.Name, Magazine: weapon.Magazine}
		if item, ok := ecs.GetComponent[*components.ItemComponent](s.EntityManager, itemID); ok {
			entry.Rarity = item.Rarity.String()
		}
		loadout.Weapons[slot] = entry
		if itemID == equipped {
			loadout.EquippedSlot = slot
		}
	}
	return loadout, nil
}

// RestoreLoadout 用存档替换玩家的背包、备弹和生命值
// 只应在玩家刚创建、没有进行中的动作时调用
func (s *Simulation) RestoreLoadout(player ecs.EntityID, loadout *game.Loadout) error {
	if loadout == nil {
		return fmt.Errorf("loadout is nil")
	}
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.EntityManager, player)
	if !ok {
		return fmt.Errorf("entity %d has no inventory", player)
	}
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.EntityManager, player)
	if !ok {
		return fmt.Errorf("entity %d has no combat component", player)
	}
	if len(loadout.Weapons) > inv.Capacity {
		return fmt.Errorf("loadout has %d slots, inventory capacity is %d", len(loadout.Weapons), inv.Capacity)
	}

	position := actorLocation(s.EntityManager, player)
	restored := make([]ecs.EntityID, len(loadout.Weapons))
	for slot, entry := range loadout.Weapons {
		if entry.Weapon == "" {
			continue
		}
		id, err := entities.NewWeapon(s.EntityManager, s.config, entry.Weapon, position)
		if err != nil {
			for _, created := range restored {
				s.EntityManager.DestroyEntity(created)
			}
			return fmt.Errorf("failed to restore slot %d: %w", slot, err)
		}
		weapon, _ := ecs.GetComponent[*components.WeaponComponent](s.EntityManager, id)
		weapon.Magazine = 0
		weapon.Load(entry.Magazine)
		if rarity, ok := components.ParseRarity(entry.Rarity); ok {
			item, _ := ecs.GetComponent[*components.ItemComponent](s.EntityManager, id)
			item.Rarity = rarity
		}
		restored[slot] = id
	}

	for _, old := range inv.Slots {
		s.EntityManager.DestroyEntity(old)
	}
	inv.Slots = inv.Slots[:0]
	combat.EquippedWeapon = ecs.InvalidEntity

	for slot, id := range restored {
		inv.Slots = append(inv.Slots, id)
		if id == ecs.InvalidEntity {
			continue
		}
		item, _ := ecs.GetComponent[*components.ItemComponent](s.EntityManager, id)
		item.Owner = player
		item.SlotIndex = slot
		setItemState(item, components.ItemStatePickedUp)
	}
	if equipped := inv.ItemAt(loadout.EquippedSlot); equipped != ecs.InvalidEntity {
		s.Combat.equipWeapon(player, equipped, false)
	}

	reserves := make(map[components.AmmoType]int, len(loadout.Reserves))
	for ammoType, n := range loadout.Reserves {
		reserves[components.AmmoType(ammoType)] = n
	}
	s.EntityManager.AddComponent(player, components.NewAmmoLedger(reserves))

	if health, ok := ecs.GetComponent[*components.HealthComponent](s.EntityManager, player); ok && loadout.Health > 0 {
		health.Current = utils.Clamp(loadout.Health, 1, health.Max)
	}

	s.logger.Info().Uint64("player", uint64(player)).Int("slots", len(restored)).Int("equipped", loadout.EquippedSlot).Msg("Loadout restored")
	return nil
}
