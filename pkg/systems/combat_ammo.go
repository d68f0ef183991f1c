package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
)

// equippedWeapon 返回角色当前装备的武器实体及其武器组件
func (s *CombatSystem) equippedWeapon(id ecs.EntityID) (ecs.EntityID, *components.WeaponComponent, bool) {
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, id)
	if !ok || combat.EquippedWeapon == ecs.InvalidEntity {
		return ecs.InvalidEntity, nil, false
	}
	weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.entityManager, combat.EquippedWeapon)
	if !ok {
		return ecs.InvalidEntity, nil, false
	}
	return combat.EquippedWeapon, weapon, true
}

// GetEquippedWeapon 返回当前装备的武器，未装备时为 InvalidEntity
func (s *CombatSystem) GetEquippedWeapon(id ecs.EntityID) ecs.EntityID {
	weaponID, _, _ := s.equippedWeapon(id)
	return weaponID
}

// CarryingReserve 是否携带当前武器所用类型的备弹
func (s *CombatSystem) CarryingReserve(id ecs.EntityID) bool {
	_, weapon, ok := s.equippedWeapon(id)
	if !ok {
		return false
	}
	ledger, ok := ecs.GetComponent[*components.AmmoLedgerComponent](s.entityManager, id)
	return ok && ledger.Reserve(weapon.AmmoType) > 0
}

// PickupAmmo 把弹药箱计入备弹；当前武器同类型且弹匣已空时自动换弹
func (s *CombatSystem) PickupAmmo(id ecs.EntityID, ammoType components.AmmoType, amount int) {
	ledger, ok := ecs.GetComponent[*components.AmmoLedgerComponent](s.entityManager, id)
	if !ok {
		return
	}
	ledger.Add(ammoType, amount)

	s.logger.Debug().
		Uint64("actor", uint64(id)).
		Str("ammo_type", string(ammoType)).
		Int("amount", amount).
		Int("reserve", ledger.Reserve(ammoType)).
		Msg("Ammo picked up")

	_, weapon, ok := s.equippedWeapon(id)
	if !ok || weapon.AmmoType != ammoType || weapon.HasAmmo() {
		return
	}
	s.RequestReload(id)
}
