package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
)

// HitLabelSystem 伤害飘字：每帧投影到屏幕，寿命到期后销毁
type HitLabelSystem struct {
	entityManager *ecs.EntityManager
	world         game.WorldQuery
}

// NewHitLabelSystem 创建飘字系统；world 为 nil 时只计算寿命
func NewHitLabelSystem(em *ecs.EntityManager, world game.WorldQuery) *HitLabelSystem {
	return &HitLabelSystem{
		entityManager: em,
		world:         world,
	}
}

// Update 更新所有飘字
func (s *HitLabelSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith2[*components.HitLabelComponent, *components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		label, _ := ecs.GetComponent[*components.HitLabelComponent](s.entityManager, id)
		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)

		lifetime.CurrentLifetime += deltaTime
		if lifetime.CurrentLifetime >= lifetime.MaxLifetime {
			lifetime.IsExpired = true
		}

		// 已过期,标记实体待删除
		if lifetime.IsExpired {
			s.entityManager.DestroyEntity(id)
			continue
		}

		if s.world == nil {
			continue
		}
		label.ScreenX, label.ScreenY, label.OnScreen = s.world.ProjectWorldToScreen(label.Location)
	}
}
