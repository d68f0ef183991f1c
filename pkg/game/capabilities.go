package game

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// Damageable 可以受到伤害的角色
type Damageable interface {
	TakeDamage(target ecs.EntityID, amount float64, instigator ecs.EntityID)
}

// Stunnable 可以被打出硬直的角色
type Stunnable interface {
	RequestStun(target ecs.EntityID)
}

// Interpolatable 可以飞向角色锚点的物品
type Interpolatable interface {
	StartItemCurve(owner, item ecs.EntityID, forceSound bool)
	GetInterpolationAnchor(owner ecs.EntityID, index int) (utils.Vec3, bool)
}

// InventoryHolder 可以接收物品的角色
type InventoryHolder interface {
	ReceivePickup(owner, item ecs.EntityID)
	IncrementOverlapCount(owner ecs.EntityID, delta int)
}
