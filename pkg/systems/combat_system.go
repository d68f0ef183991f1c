package systems

import (
	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/metrics"
	"github.com/decker502/shooter/pkg/utils"
)

// 开火动画片段
const hipFireSection = "StartFire"

// 切枪动画片段
const equipSection = "Equip"

// CombatSystem 玩家战斗状态机
//
// 所有请求在前置条件不满足时静默忽略，调用方通过 CanFire / CanReload / GetCombatState 查询。
// 计时器回调在执行前都会重新检查当前状态，硬直等抢占不会被迟到的回调覆盖。
type CombatSystem struct {
	entityManager *ecs.EntityManager
	scheduler     game.Scheduler
	anim          game.AnimationPlayer
	effects       game.Effects
	world         game.WorldQuery
	events        *game.EventQueue
	metrics       *metrics.CombatMetrics
	damage        *DamageSystem
	logger        zerolog.Logger
}

// NewCombatSystem 创建战斗状态机
func NewCombatSystem(em *ecs.EntityManager, scheduler game.Scheduler, logger zerolog.Logger) *CombatSystem {
	return &CombatSystem{
		entityManager: em,
		scheduler:     scheduler,
		logger:        logging.ForSystem(logger, "CombatSystem"),
	}
}

// SetAnimationPlayer 设置动画播放器
func (s *CombatSystem) SetAnimationPlayer(anim game.AnimationPlayer) { s.anim = anim }

// SetEffects 设置音效/粒子
func (s *CombatSystem) SetEffects(fx game.Effects) { s.effects = fx }

// SetWorldQuery 设置世界查询(射线检测)
func (s *CombatSystem) SetWorldQuery(world game.WorldQuery) { s.world = world }

// SetEventQueue 设置出站事件队列
func (s *CombatSystem) SetEventQueue(q *game.EventQueue) { s.events = q }

// SetMetrics 设置计数器
func (s *CombatSystem) SetMetrics(m *metrics.CombatMetrics) { s.metrics = m }

// SetDamageSystem 设置子弹命中的结算方
func (s *CombatSystem) SetDamageSystem(d *DamageSystem) { s.damage = d }

// combatant 取出角色的战斗组件；死亡或缺组件时 ok 为 false
func (s *CombatSystem) combatant(id ecs.EntityID) (*components.CombatComponent, bool) {
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id)
	if !ok {
		return nil, false
	}
	if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id); ok && health.Dead {
		return nil, false
	}
	return combat, true
}

// GetCombatState 返回角色当前战斗状态
func (s *CombatSystem) GetCombatState(id ecs.EntityID) components.CombatState {
	if combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id); ok {
		return combat.State
	}
	return components.CombatStateUnoccupied
}

// IsDead 角色是否已进入死亡终态
func (s *CombatSystem) IsDead(id ecs.EntityID) bool {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id)
	return ok && health.Dead
}

// FireButtonPressed 按下开火键
func (s *CombatSystem) FireButtonPressed(id ecs.EntityID) {
	combat, ok := s.combatant(id)
	if !ok || combat.InputDisabled {
		return
	}
	combat.FireButtonHeld = true
	s.RequestFire(id)
}

// FireButtonReleased 松开开火键
func (s *CombatSystem) FireButtonReleased(id ecs.EntityID) {
	if combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id); ok {
		combat.FireButtonHeld = false
	}
}

// AimButtonPressed 按下瞄准键；换弹、切枪、硬直中只记录按键，不进入瞄准
func (s *CombatSystem) AimButtonPressed(id ecs.EntityID) {
	combat, ok := s.combatant(id)
	if !ok || combat.InputDisabled {
		return
	}
	combat.AimButtonHeld = true
	switch combat.State {
	case components.CombatStateReloading, components.CombatStateEquipping, components.CombatStateStunned:
		return
	}
	combat.Aiming = true
}

// AimButtonReleased 松开瞄准键
func (s *CombatSystem) AimButtonReleased(id ecs.EntityID) {
	if combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id); ok {
		combat.AimButtonHeld = false
		combat.Aiming = false
	}
}

// LookScale 返回当前视角灵敏度：瞄准与腰射分开配置
func (s *CombatSystem) LookScale(id ecs.EntityID) float64 {
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id)
	if !ok {
		return 1
	}
	if combat.Aiming {
		return combat.AimLookRate
	}
	return combat.HipLookRate
}

// reaimIfHeld 动作结束后，如果瞄准键仍按住则恢复瞄准
func reaimIfHeld(combat *components.CombatComponent) {
	if combat.AimButtonHeld {
		combat.Aiming = true
	}
}

// CanFire 当前能否开火
func (s *CombatSystem) CanFire(id ecs.EntityID) bool {
	combat, ok := s.combatant(id)
	if !ok || combat.State != components.CombatStateUnoccupied {
		return false
	}
	_, weapon, ok := s.equippedWeapon(id)
	return ok && weapon.HasAmmo()
}

// RequestFire 开火
//
// 前置条件：状态为 Unoccupied，已装备武器且弹匣非空。
// 成功后播放射击表现、发射子弹、弹匣减一，并进入 FireTimerInProgress 直到射击间隔结束。
func (s *CombatSystem) RequestFire(id ecs.EntityID) {
	if !s.CanFire(id) {
		return
	}
	combat, _ := s.combatant(id)
	weaponID, weapon, _ := s.equippedWeapon(id)

	muzzle := s.muzzleLocation(id, weaponID, weapon)
	playSound(s.effects, weapon.FireSound, muzzle)
	s.sendBullet(id, weaponID, weapon, muzzle)
	playMontage(s.anim, id, combat.HipFireMontage, hipFireSection)
	weapon.DecrementAmmo()

	s.startCrosshairShot(id, combat)

	combat.State = components.CombatStateFireTimerInProgress
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerAutoFire}, weapon.FireInterval, func() {
		s.ResolveTimerExpiry(id, game.TimerAutoFire)
	})

	s.metrics.ShotFired(weapon.Name)
	s.logger.Debug().Uint64("actor", uint64(id)).Str("weapon", weapon.Name).Int("magazine", weapon.Magazine).Msg("Weapon fired")
}

// startCrosshairShot 打开准星射击扩散窗口
func (s *CombatSystem) startCrosshairShot(id ecs.EntityID, combat *components.CombatComponent) {
	combat.FiringBullet = true
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerCrosshairShot}, combat.ShootWindowSeconds, func() {
		s.ResolveTimerExpiry(id, game.TimerCrosshairShot)
	})
}

// CanReload 当前能否换弹
func (s *CombatSystem) CanReload(id ecs.EntityID) bool {
	combat, ok := s.combatant(id)
	if !ok || combat.State != components.CombatStateUnoccupied {
		return false
	}
	_, weapon, ok := s.equippedWeapon(id)
	if !ok || weapon.IsFull() {
		return false
	}
	return s.CarryingReserve(id)
}

// RequestReload 换弹
//
// 前置条件：状态为 Unoccupied，已装备武器，有对应备弹且弹匣未满。
// 弹药在换弹计时结束时才转移。
func (s *CombatSystem) RequestReload(id ecs.EntityID) {
	if !s.CanReload(id) {
		return
	}
	combat, _ := s.combatant(id)
	_, weapon, _ := s.equippedWeapon(id)

	combat.Aiming = false
	combat.State = components.CombatStateReloading
	playMontage(s.anim, id, combat.ReloadMontage, weapon.ReloadSection)
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerReload}, weapon.ReloadDuration, func() {
		s.ResolveTimerExpiry(id, game.TimerReload)
	})

	s.logger.Debug().Uint64("actor", uint64(id)).Str("weapon", weapon.Name).Msg("Reload started")
}

// RequestEquip 切换到背包中 slot 槽位的武器
func (s *CombatSystem) RequestEquip(id ecs.EntityID, slot int) {
	current := -1
	if weaponID, _, ok := s.equippedWeapon(id); ok {
		if item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, weaponID); ok {
			current = item.SlotIndex
		}
	}
	s.exchangeInventoryItems(id, current, slot)
}

// exchangeInventoryItems 从 currentSlot 切换到 newSlot
//
// 前置条件：两个槽位不同，newSlot 在背包范围内且是武器，状态为 Unoccupied 或 Equipping。
func (s *CombatSystem) exchangeInventoryItems(id ecs.EntityID, currentSlot, newSlot int) {
	combat, ok := s.combatant(id)
	if !ok {
		return
	}
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, id)
	if !ok {
		return
	}
	if currentSlot == newSlot || newSlot < 0 || newSlot >= inv.Len() {
		return
	}
	if combat.State != components.CombatStateUnoccupied && combat.State != components.CombatStateEquipping {
		return
	}

	newWeapon := inv.ItemAt(newSlot)
	if !ecs.HasComponent[*components.WeaponComponent](s.entityManager, newWeapon) {
		return
	}
	newItem, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, newWeapon)
	if !ok {
		return
	}

	combat.Aiming = false

	oldWeapon := combat.EquippedWeapon
	s.equipWeapon(id, newWeapon, false)
	if oldWeapon != ecs.InvalidEntity && oldWeapon != newWeapon {
		if oldItem, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, oldWeapon); ok {
			setItemState(oldItem, components.ItemStatePickedUp)
		}
	}

	combat.State = components.CombatStateEquipping
	playMontage(s.anim, id, combat.EquipMontage, equipSection)
	playSound(s.effects, newItem.EquipSound, actorLocation(s.entityManager, id))
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerEquip}, combat.EquipDuration, func() {
		s.ResolveTimerExpiry(id, game.TimerEquip)
	})

	s.logger.Debug().Uint64("actor", uint64(id)).Int("from", currentSlot).Int("to", newSlot).Msg("Equipping weapon")
}

// equipWeapon 把 weaponID 设为装备武器
// swapping 为 true 表示替换满背包中的装备武器，此时不发槽位变化事件
func (s *CombatSystem) equipWeapon(id, weaponID ecs.EntityID, swapping bool) {
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id)
	if !ok {
		return
	}
	newItem, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, weaponID)
	if !ok {
		return
	}

	if combat.EquippedWeapon == ecs.InvalidEntity {
		s.events.Push(game.EquipSlotChangedEvent{Owner: id, FromSlot: -1, ToSlot: newItem.SlotIndex})
	} else if !swapping {
		fromSlot := -1
		if oldItem, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, combat.EquippedWeapon); ok {
			fromSlot = oldItem.SlotIndex
		}
		s.events.Push(game.EquipSlotChangedEvent{Owner: id, FromSlot: fromSlot, ToSlot: newItem.SlotIndex})
	}

	newItem.Owner = id
	setItemState(newItem, components.ItemStateEquipped)
	combat.EquippedWeapon = weaponID
}

// RequestStun 硬直：除死亡外无条件打断当前状态
func (s *CombatSystem) RequestStun(id ecs.EntityID) {
	combat, ok := s.combatant(id)
	if !ok {
		return
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id)
	if ok && health.Current <= 0 {
		return
	}

	previous := combat.State
	for _, purpose := range []game.TimerPurpose{game.TimerAutoFire, game.TimerReload, game.TimerEquip} {
		s.scheduler.ClearTimer(game.TimerHandle{Owner: id, Purpose: purpose})
	}
	combat.State = components.CombatStateStunned
	combat.Aiming = false
	playMontage(s.anim, id, combat.HitReactMontage, "")
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerStun}, combat.StunDuration, func() {
		s.ResolveTimerExpiry(id, game.TimerStun)
	})

	s.metrics.Stunned("player")
	s.logger.Debug().Uint64("actor", uint64(id)).Stringer("interrupted", previous).Msg("Stunned")
}

// ResolveTimerExpiry 计时器到期的统一入口
// 每个分支在执行前检查当前状态，状态已变化时为空操作
func (s *CombatSystem) ResolveTimerExpiry(id ecs.EntityID, kind game.TimerPurpose) {
	combat, ok := s.combatant(id)
	if !ok {
		return
	}

	switch kind {
	case game.TimerAutoFire:
		s.autoFireReset(id, combat)
	case game.TimerReload:
		s.finishReloading(id, combat)
	case game.TimerEquip:
		if combat.State != components.CombatStateEquipping {
			return
		}
		combat.State = components.CombatStateUnoccupied
		reaimIfHeld(combat)
	case game.TimerStun:
		if combat.State != components.CombatStateStunned {
			return
		}
		combat.State = components.CombatStateUnoccupied
		reaimIfHeld(combat)
	case game.TimerCrosshairShot:
		combat.FiringBullet = false
	}
}

// autoFireReset 射击间隔结束：连发或自动换弹
func (s *CombatSystem) autoFireReset(id ecs.EntityID, combat *components.CombatComponent) {
	if combat.State != components.CombatStateFireTimerInProgress {
		return
	}
	combat.State = components.CombatStateUnoccupied

	_, weapon, ok := s.equippedWeapon(id)
	if !ok {
		return
	}
	if weapon.HasAmmo() {
		if combat.FireButtonHeld && weapon.Automatic {
			s.RequestFire(id)
		}
		return
	}
	s.RequestReload(id)
}

// finishReloading 换弹结束：把 min(备弹, 弹匣空间) 转移到弹匣
func (s *CombatSystem) finishReloading(id ecs.EntityID, combat *components.CombatComponent) {
	if combat.State != components.CombatStateReloading {
		return
	}
	combat.State = components.CombatStateUnoccupied
	reaimIfHeld(combat)

	_, weapon, ok := s.equippedWeapon(id)
	if !ok {
		return
	}
	ledger, ok := ecs.GetComponent[*components.AmmoLedgerComponent](s.entityManager, id)
	if !ok {
		return
	}

	moved := ledger.Withdraw(weapon.AmmoType, weapon.EmptySpace())
	weapon.Load(moved)

	s.metrics.ReloadCompleted(string(weapon.AmmoType))
	s.logger.Debug().
		Uint64("actor", uint64(id)).
		Int("moved", moved).
		Int("magazine", weapon.Magazine).
		Int("reserve", ledger.Reserve(weapon.AmmoType)).
		Msg("Reload finished")
}

// HandleDeath 进入死亡终态：取消所有动作计时器并播放死亡动画
func (s *CombatSystem) HandleDeath(id ecs.EntityID) {
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id)
	if !ok {
		return
	}
	for _, purpose := range []game.TimerPurpose{game.TimerAutoFire, game.TimerReload, game.TimerEquip, game.TimerStun, game.TimerCrosshairShot} {
		s.scheduler.ClearTimer(game.TimerHandle{Owner: id, Purpose: purpose})
	}
	combat.Aiming = false
	combat.FireButtonHeld = false
	combat.FiringBullet = false
	playMontage(s.anim, id, combat.DeathMontage, "")
	s.logger.Info().Uint64("actor", uint64(id)).Msg("Player died")
}

// FinishDeath 死亡动画结束：禁用输入
func (s *CombatSystem) FinishDeath(id ecs.EntityID) {
	if !s.IsDead(id) {
		return
	}
	if combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id); ok {
		combat.InputDisabled = true
	}
}

// muzzleLocation 枪口位置；取不到插槽时用角色位置
func (s *CombatSystem) muzzleLocation(id, weaponID ecs.EntityID, weapon *components.WeaponComponent) utils.Vec3 {
	if s.world != nil && weapon.MuzzleSocket != "" {
		if loc, ok := s.world.SocketLocation(weaponID, weapon.MuzzleSocket); ok {
			return loc
		}
	}
	return actorLocation(s.entityManager, id)
}

// sendBullet 发射子弹并把命中交给伤害系统
func (s *CombatSystem) sendBullet(id, weaponID ecs.EntityID, weapon *components.WeaponComponent, muzzle utils.Vec3) {
	spawnParticles(s.effects, weapon.MuzzleFlash, muzzle)

	hit, ok := s.beamEnd(id, muzzle, weapon)
	if !ok {
		return
	}
	if s.damage != nil {
		s.damage.ApplyBulletHit(id, hit, weaponID)
	}
	spawnParticles(s.effects, weapon.BeamParticle, muzzle)
}

// beamEnd 先沿准星做射线确定目标点，再从枪口向目标点做第二次射线
// 第二次射线没有命中时，以准星射线的终点作为命中位置
func (s *CombatSystem) beamEnd(id ecs.EntityID, muzzle utils.Vec3, weapon *components.WeaponComponent) (game.HitResult, bool) {
	if s.world == nil {
		return game.HitResult{}, false
	}
	player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, id)
	if !ok {
		return game.HitResult{}, false
	}

	origin, dir, ok := s.world.DeprojectScreenToWorld(player.CrosshairX, player.CrosshairY)
	if !ok {
		return game.HitResult{}, false
	}
	beamEnd := origin.Add(dir.Normalize().Scale(weapon.Range))
	if crosshairHit := s.world.LineTrace(origin, beamEnd); crosshairHit.Blocking {
		beamEnd = crosshairHit.Location
	}

	traceEnd := muzzle.Add(beamEnd.Sub(muzzle).Scale(1.25))
	hit := s.world.LineTrace(muzzle, traceEnd)
	if !hit.Blocking {
		hit.Location = beamEnd
	}
	return hit, true
}
