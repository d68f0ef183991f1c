package entities

import (
	"fmt"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// NewPlayer 创建玩家角色实体
// 参数:
//   - em: EntityManager 实例
//   - cfg: 战斗配置
//   - position: 出生点
//
// 返回: 创建的实体ID；配置缺少锚点时返回错误
//
// 初始武器不在这里创建，由调用方通过 NewWeapon + InventorySystem.EquipStartingWeapon 装备。
func NewPlayer(em *ecs.EntityManager, cfg *config.CombatConfig, position utils.Vec3) (ecs.EntityID, error) {
	if cfg == nil {
		return ecs.InvalidEntity, fmt.Errorf("combat config is nil")
	}
	p := cfg.Player
	if len(p.Anchors) == 0 {
		return ecs.InvalidEntity, fmt.Errorf("player config has no interp anchors")
	}

	id := em.CreateEntity()

	em.AddComponent(id, &components.TransformComponent{Position: position, Scale: 1})
	em.AddComponent(id, &components.PlayerComponent{PickupRange: p.PickupRange})
	em.AddComponent(id, components.NewHealth(p.MaxHealth, p.StunChance))

	em.AddComponent(id, &components.CombatComponent{
		State:              components.CombatStateUnoccupied,
		HipFireMontage:     p.Montages.HipFire,
		ReloadMontage:      p.Montages.Reload,
		EquipMontage:       p.Montages.Equip,
		HitReactMontage:    p.Montages.HitReact,
		DeathMontage:       p.Montages.Death,
		EquipDuration:      p.EquipDuration,
		StunDuration:       p.StunDuration,
		ShootWindowSeconds: p.ShootWindow,
		HipLookRate:        p.HipLookRate,
		AimLookRate:        p.AimLookRate,
		HitParticles:       p.HitParticles,
		MeleeImpactSound:   p.MeleeImpactSound,
	})

	reserves := make(map[components.AmmoType]int, len(p.StartingAmmo))
	for ammoType, n := range p.StartingAmmo {
		reserves[components.AmmoType(ammoType)] = n
	}
	em.AddComponent(id, components.NewAmmoLedger(reserves))
	em.AddComponent(id, components.NewInventory(p.InventoryCapacity))

	anchors := make([]components.InterpAnchor, len(p.Anchors))
	for i, offset := range p.Anchors {
		anchors[i] = components.InterpAnchor{Offset: offset}
	}
	em.AddComponent(id, &components.AnchorSetComponent{Anchors: anchors})

	return id, nil
}
