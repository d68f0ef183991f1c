package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// 可选协作者的空值处理：缺少协作者或资源名为空时跳过对应表现

func playMontage(anim game.AnimationPlayer, actor ecs.EntityID, montage, section string) {
	if anim == nil || montage == "" {
		return
	}
	anim.Play(actor, montage, section)
}

func playSound(fx game.Effects, name string, at utils.Vec3) {
	if fx == nil || name == "" {
		return
	}
	fx.PlaySound(name, at)
}

func spawnParticles(fx game.Effects, name string, at utils.Vec3) {
	if fx == nil || name == "" {
		return
	}
	fx.SpawnParticles(name, at)
}

// actorLocation 返回实体位置，没有 TransformComponent 时返回原点
func actorLocation(em *ecs.EntityManager, id ecs.EntityID) utils.Vec3 {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](em, id); ok {
		return tr.Position
	}
	return utils.Vec3{}
}

// setItemState 切换物品状态并同步表现标志
func setItemState(item *components.ItemComponent, state components.ItemState) {
	item.State = state
	switch state {
	case components.ItemStatePickupIdle:
		item.MeshVisible = true
		item.CollisionEnabled = true
		item.PickupWidgetVisible = false
		item.GlowEnabled = true
	case components.ItemStateEquipInterpolating:
		item.MeshVisible = true
		item.CollisionEnabled = false
		item.PickupWidgetVisible = false
	case components.ItemStatePickedUp:
		item.MeshVisible = false
		item.CollisionEnabled = false
		item.PickupWidgetVisible = false
		item.GlowEnabled = false
		item.CustomDepth = false
	case components.ItemStateEquipped:
		item.MeshVisible = true
		item.CollisionEnabled = false
		item.PickupWidgetVisible = false
		item.GlowEnabled = false
		item.CustomDepth = false
	case components.ItemStateFalling:
		item.MeshVisible = true
		item.CollisionEnabled = true
		item.PickupWidgetVisible = false
	}
}

// enableCustomDepth 打开描边，插值期间不允许改动
func enableCustomDepth(item *components.ItemComponent) {
	if item.CanChangeCustomDepth {
		item.CustomDepth = true
	}
}

func disableCustomDepth(item *components.ItemComponent) {
	if item.CanChangeCustomDepth {
		item.CustomDepth = false
	}
}
