package systems

import (
	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/metrics"
)

// 被丢弃武器落地所需时间(秒)
const weaponFallDuration = 0.7

// InventorySystem 背包槽位、准星拾取检测和物品交接
type InventorySystem struct {
	entityManager *ecs.EntityManager
	scheduler     game.Scheduler
	combat        *CombatSystem
	interp        game.Interpolatable
	world         game.WorldQuery
	effects       game.Effects
	events        *game.EventQueue
	metrics       *metrics.CombatMetrics
	logger        zerolog.Logger

	pickupSoundResetTime float64
	equipSoundResetTime  float64
}

// NewInventorySystem 创建背包系统
func NewInventorySystem(em *ecs.EntityManager, scheduler game.Scheduler, combat *CombatSystem, logger zerolog.Logger) *InventorySystem {
	return &InventorySystem{
		entityManager:        em,
		scheduler:            scheduler,
		combat:               combat,
		logger:               logging.ForSystem(logger, "InventorySystem"),
		pickupSoundResetTime: 0.2,
		equipSoundResetTime:  0.2,
	}
}

// SetInterpolator 设置物品插值引擎
func (s *InventorySystem) SetInterpolator(interp game.Interpolatable) { s.interp = interp }

// SetWorldQuery 设置世界查询
func (s *InventorySystem) SetWorldQuery(world game.WorldQuery) { s.world = world }

// SetEffects 设置音效/粒子
func (s *InventorySystem) SetEffects(fx game.Effects) { s.effects = fx }

// SetEventQueue 设置出站事件队列
func (s *InventorySystem) SetEventQueue(q *game.EventQueue) { s.events = q }

// SetMetrics 设置计数器
func (s *InventorySystem) SetMetrics(m *metrics.CombatMetrics) { s.metrics = m }

// SetSoundResetTimes 设置拾取/装备音效的去重窗口
func (s *InventorySystem) SetSoundResetTimes(pickup, equip float64) {
	s.pickupSoundResetTime = pickup
	s.equipSoundResetTime = equip
}

// Update 对所有玩家做准星物品检测
func (s *InventorySystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith2[*components.PlayerComponent, *components.InventoryComponent](s.entityManager) {
		s.traceForItems(id)
	}
}

// Add 把物品放入第一个空槽或追加到末尾；背包已满时与装备武器交换
func (s *InventorySystem) Add(owner, itemID ecs.EntityID) {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok {
		return
	}
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, itemID)
	if !ok || inv.IndexOf(itemID) >= 0 {
		return
	}

	slot := inv.EmptySlot()
	if slot < 0 {
		if !s.swapWeapon(owner, itemID) {
			// 没有可交换的装备武器，物品退回地面
			s.dropWeapon(owner, itemID)
			s.logger.Warn().Uint64("owner", uint64(owner)).Str("item", item.Name).Msg("Inventory full with nothing to swap, item dropped")
		}
		return
	}
	if slot == inv.Len() {
		inv.Slots = append(inv.Slots, itemID)
	} else {
		inv.Slots[slot] = itemID
	}
	item.SlotIndex = slot
	item.Owner = owner
	setItemState(item, components.ItemStatePickedUp)

	s.logger.Debug().Uint64("owner", uint64(owner)).Str("item", item.Name).Int("slot", slot).Msg("Item added to inventory")
}

// swapWeapon 背包已满：新武器占据装备武器的槽位，旧武器被丢到地上
// 没有装备武器或新物品不是武器时返回 false
func (s *InventorySystem) swapWeapon(owner, newWeapon ecs.EntityID) bool {
	inv, _ := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	oldWeapon := s.combat.GetEquippedWeapon(owner)
	if oldWeapon == ecs.InvalidEntity || !ecs.HasComponent[*components.WeaponComponent](s.entityManager, newWeapon) {
		return false
	}
	oldItem, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, oldWeapon)
	if !ok {
		return false
	}
	newItem, _ := ecs.GetComponent[*components.ItemComponent](s.entityManager, newWeapon)

	slot := oldItem.SlotIndex
	if slot < 0 || slot >= inv.Len() {
		return false
	}
	inv.Slots[slot] = newWeapon
	newItem.SlotIndex = slot

	s.dropWeapon(owner, oldWeapon)
	s.combat.equipWeapon(owner, newWeapon, true)
	inv.TracedItem = ecs.InvalidEntity
	inv.LastTracedItem = ecs.InvalidEntity

	s.logger.Info().Uint64("owner", uint64(owner)).Str("dropped", oldItem.Name).Str("equipped", newItem.Name).Int("slot", slot).Msg("Weapon swapped")
	return true
}

// dropWeapon 把武器丢到持有者脚下，落地后恢复为可拾取
func (s *InventorySystem) dropWeapon(owner, weaponID ecs.EntityID) {
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, weaponID)
	if !ok {
		return
	}
	item.Owner = ecs.InvalidEntity
	item.SlotIndex = -1
	setItemState(item, components.ItemStateFalling)
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, weaponID); ok {
		tr.Position = actorLocation(s.entityManager, owner)
	}

	s.scheduler.SetTimer(game.TimerHandle{Owner: weaponID, Purpose: game.TimerFalling}, weaponFallDuration, func() {
		current, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, weaponID)
		if !ok || current.State != components.ItemStateFalling {
			return
		}
		setItemState(current, components.ItemStatePickupIdle)
	})
}

// ExchangeSlots 从 currentSlot 切换到 newSlot 的武器
func (s *InventorySystem) ExchangeSlots(owner ecs.EntityID, currentSlot, newSlot int) {
	s.combat.exchangeInventoryItems(owner, currentSlot, newSlot)
}

// SelectSlot 切换到指定槽位(数字键)
func (s *InventorySystem) SelectSlot(owner ecs.EntityID, slot int) {
	s.combat.RequestEquip(owner, slot)
}

// GetEmptySlot 返回可放入新物品的槽位，背包已满返回 -1
func (s *InventorySystem) GetEmptySlot(owner ecs.EntityID) int {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok {
		return -1
	}
	return inv.EmptySlot()
}

// Highlight 让空槽 slot 开始闪烁；同一时刻只有一个槽位闪烁
func (s *InventorySystem) Highlight(owner ecs.EntityID, slot int) {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok || slot < 0 || slot >= inv.Capacity || inv.ItemAt(slot) != ecs.InvalidEntity {
		return
	}
	if inv.HighlightedSlot == slot {
		return
	}
	s.Unhighlight(owner)
	inv.HighlightedSlot = slot
	s.events.Push(game.HighlightIconEvent{Owner: owner, Slot: slot, On: true})
}

// HighlightEmptySlot 闪烁第一个空槽
func (s *InventorySystem) HighlightEmptySlot(owner ecs.EntityID) {
	s.Highlight(owner, s.GetEmptySlot(owner))
}

// Unhighlight 停止闪烁
func (s *InventorySystem) Unhighlight(owner ecs.EntityID) {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok || inv.HighlightedSlot < 0 {
		return
	}
	s.events.Push(game.HighlightIconEvent{Owner: owner, Slot: inv.HighlightedSlot, On: false})
	inv.HighlightedSlot = -1
}

// IncrementOverlapCount 物品进入/离开拾取范围，计数不小于 0
func (s *InventorySystem) IncrementOverlapCount(owner ecs.EntityID, delta int) {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok {
		return
	}
	inv.OverlappedItemCount += delta
	if inv.OverlappedItemCount < 0 {
		inv.OverlappedItemCount = 0
	}
}

// traceForItems 准星射线检测物品，维护拾取提示和描边
func (s *InventorySystem) traceForItems(owner ecs.EntityID) {
	inv, _ := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)

	if inv.OverlappedItemCount <= 0 {
		s.hideTracedItem(inv.LastTracedItem)
		inv.TracedItem = ecs.InvalidEntity
		inv.LastTracedItem = ecs.InvalidEntity
		return
	}

	traced := s.traceUnderCrosshair(owner)
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, traced)
	if ok && item.State == components.ItemStateEquipInterpolating {
		traced = ecs.InvalidEntity
		ok = false
	}

	if ok {
		if ecs.HasComponent[*components.WeaponComponent](s.entityManager, traced) {
			if inv.HighlightedSlot < 0 {
				s.HighlightEmptySlot(owner)
			}
		} else if inv.HighlightedSlot >= 0 {
			s.Unhighlight(owner)
		}
		item.PickupWidgetVisible = true
		enableCustomDepth(item)
		item.InventoryFull = inv.Len() >= inv.Capacity
	}
	inv.TracedItem = traced

	if inv.LastTracedItem != ecs.InvalidEntity && inv.LastTracedItem != traced {
		s.hideTracedItem(inv.LastTracedItem)
	}
	inv.LastTracedItem = traced
}

// traceUnderCrosshair 返回准星下可拾取的物品
func (s *InventorySystem) traceUnderCrosshair(owner ecs.EntityID) ecs.EntityID {
	if s.world == nil {
		return ecs.InvalidEntity
	}
	player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, owner)
	if !ok {
		return ecs.InvalidEntity
	}
	origin, dir, ok := s.world.DeprojectScreenToWorld(player.CrosshairX, player.CrosshairY)
	if !ok {
		return ecs.InvalidEntity
	}
	hit := s.world.LineTrace(origin, origin.Add(dir.Normalize().Scale(player.PickupRange)))
	if !hit.Blocking || !ecs.HasComponent[*components.ItemComponent](s.entityManager, hit.Actor) {
		return ecs.InvalidEntity
	}
	return hit.Actor
}

func (s *InventorySystem) hideTracedItem(id ecs.EntityID) {
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
	if !ok {
		return
	}
	item.PickupWidgetVisible = false
	disableCustomDepth(item)
}

// SelectButtonPressed 拾取准星下的物品
func (s *InventorySystem) SelectButtonPressed(owner ecs.EntityID) {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok || s.interp == nil {
		return
	}
	if s.combat.IsDead(owner) || s.combat.GetCombatState(owner) != components.CombatStateUnoccupied {
		return
	}
	if inv.TracedItem == ecs.InvalidEntity || !s.entityManager.Exists(inv.TracedItem) {
		return
	}
	s.interp.StartItemCurve(owner, inv.TracedItem, true)
	inv.TracedItem = ecs.InvalidEntity
}

// ReceivePickup 插值结束后的物品交接：武器进背包，弹药计入备弹并销毁
func (s *InventorySystem) ReceivePickup(owner, itemID ecs.EntityID) {
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, itemID)
	if !ok {
		return
	}
	if s.consumeEquipSound(owner) {
		playSound(s.effects, item.EquipSound, actorLocation(s.entityManager, owner))
	}

	if ecs.HasComponent[*components.WeaponComponent](s.entityManager, itemID) {
		s.Add(owner, itemID)
		s.metrics.ItemPickedUp("weapon")
		return
	}

	if ammo, ok := ecs.GetComponent[*components.AmmoPickupComponent](s.entityManager, itemID); ok {
		s.combat.PickupAmmo(owner, ammo.AmmoType, ammo.Amount)
		setItemState(item, components.ItemStatePickedUp)
		s.entityManager.DestroyEntity(itemID)
		s.metrics.ItemPickedUp("ammo")
	}
}

// EquipStartingWeapon 把初始武器放入背包并直接装备
func (s *InventorySystem) EquipStartingWeapon(owner, weaponID ecs.EntityID) {
	s.Add(owner, weaponID)
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, weaponID)
	if !ok || item.Owner != owner {
		return
	}
	s.combat.equipWeapon(owner, weaponID, false)
}

// ConsumePickupSound 拾取音效去重：窗口内只允许播放一次
func (s *InventorySystem) ConsumePickupSound(owner ecs.EntityID) bool {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok || !inv.PickupSoundReady {
		return false
	}
	inv.PickupSoundReady = false
	s.scheduler.SetTimer(game.TimerHandle{Owner: owner, Purpose: game.TimerPickupSound}, s.pickupSoundResetTime, func() {
		if current, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner); ok {
			current.PickupSoundReady = true
		}
	})
	return true
}

func (s *InventorySystem) consumeEquipSound(owner ecs.EntityID) bool {
	inv, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner)
	if !ok || !inv.EquipSoundReady {
		return false
	}
	inv.EquipSoundReady = false
	s.scheduler.SetTimer(game.TimerHandle{Owner: owner, Purpose: game.TimerEquipSound}, s.equipSoundResetTime, func() {
		if current, ok := ecs.GetComponent[*components.InventoryComponent](s.entityManager, owner); ok {
			current.EquipSoundReady = true
		}
	})
	return true
}
