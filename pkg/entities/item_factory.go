package entities

import (
	"fmt"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// NewWeapon 根据武器模板创建一个躺在地上的武器
func NewWeapon(em *ecs.EntityManager, cfg *config.CombatConfig, name string, position utils.Vec3) (ecs.EntityID, error) {
	if cfg == nil {
		return ecs.InvalidEntity, fmt.Errorf("combat config is nil")
	}
	w, ok := cfg.GetWeapon(name)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("unknown weapon %q", name)
	}
	rarity := components.RarityCommon
	if w.Rarity != "" {
		if rarity, ok = components.ParseRarity(w.Rarity); !ok {
			return ecs.InvalidEntity, fmt.Errorf("weapon %s: unknown rarity %q", name, w.Rarity)
		}
	}

	id := em.CreateEntity()
	em.AddComponent(id, &components.TransformComponent{Position: position, Scale: 1})
	em.AddComponent(id, &components.WeaponComponent{
		Name:           name,
		AmmoType:       components.AmmoType(w.AmmoType),
		Magazine:       w.StartMagazine,
		Capacity:       w.Capacity,
		Automatic:      w.Automatic,
		FireInterval:   w.FireInterval,
		Damage:         w.Damage,
		HeadshotDamage: w.HeadshotDamage,
		Range:          w.Range,
		ReloadSection:  w.ReloadSection,
		ReloadDuration: w.ReloadDuration,
		FireSound:      w.FireSound,
		MuzzleFlash:    w.MuzzleFlash,
		MuzzleSocket:   w.MuzzleSocket,
		BeamParticle:   w.BeamParticle,
	})
	em.AddComponent(id, newPickupItem(name, components.ItemTypeWeapon, rarity, w.PickupSound, w.EquipSound))
	em.AddComponent(id, newItemInterp(cfg.Interp))
	return id, nil
}

// NewAmmoPickup 创建弹药箱；数量取自弹药模板
func NewAmmoPickup(em *ecs.EntityManager, cfg *config.CombatConfig, ammoType string, position utils.Vec3) (ecs.EntityID, error) {
	if cfg == nil {
		return ecs.InvalidEntity, fmt.Errorf("combat config is nil")
	}
	a, ok := cfg.Ammo[ammoType]
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("unknown ammo type %q", ammoType)
	}

	id := em.CreateEntity()
	em.AddComponent(id, &components.TransformComponent{Position: position, Scale: 1})
	em.AddComponent(id, &components.AmmoPickupComponent{
		AmmoType: components.AmmoType(ammoType),
		Amount:   a.Amount,
	})
	em.AddComponent(id, newPickupItem(ammoType+" ammo", components.ItemTypeAmmo, components.RarityCommon, a.PickupSound, a.EquipSound))
	em.AddComponent(id, newItemInterp(cfg.Interp))
	return id, nil
}

func newPickupItem(name string, itemType components.ItemType, rarity components.ItemRarity, pickupSound, equipSound string) *components.ItemComponent {
	return &components.ItemComponent{
		Name:                 name,
		Type:                 itemType,
		State:                components.ItemStatePickupIdle,
		Rarity:               rarity,
		SlotIndex:            -1,
		PickupSound:          pickupSound,
		EquipSound:           equipSound,
		MeshVisible:          true,
		CollisionEnabled:     true,
		GlowEnabled:          true,
		CanChangeCustomDepth: true,
	}
}

// newItemInterp 曲线按值复制，物品之间不共享关键帧切片
func newItemInterp(cfg config.InterpConfig) *components.ItemInterpComponent {
	return &components.ItemInterpComponent{
		AnchorIndex: -1,
		Duration:    cfg.Duration,
		ZCurve:      copyCurve(cfg.ZCurve),
		ScaleCurve:  copyCurvePtr(cfg.ScaleCurve),
		PulseCurve:  copyCurvePtr(cfg.PulseCurve),
	}
}

func copyCurve(c utils.Curve) utils.Curve {
	c.Keys = append([]utils.CurveKey(nil), c.Keys...)
	return c
}

func copyCurvePtr(c *utils.Curve) *utils.Curve {
	if c == nil {
		return nil
	}
	out := copyCurve(*c)
	return &out
}
