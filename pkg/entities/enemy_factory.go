package entities

import (
	"fmt"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// NewEnemy 根据敌人模板创建敌人
// 巡逻点在模板中是相对出生点的本地坐标，这里按出生朝向转换到世界坐标后写入黑板
func NewEnemy(em *ecs.EntityManager, cfg *config.CombatConfig, name string, position utils.Vec3, yaw float64) (ecs.EntityID, error) {
	if cfg == nil {
		return ecs.InvalidEntity, fmt.Errorf("combat config is nil")
	}
	e, ok := cfg.GetEnemy(name)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("unknown enemy %q", name)
	}

	id := em.CreateEntity()
	em.AddComponent(id, &components.TransformComponent{Position: position, Yaw: yaw, Scale: 1})
	em.AddComponent(id, components.NewHealth(e.MaxHealth, e.StunChance))
	em.AddComponent(id, &components.EnemyComponent{
		Name:                 name,
		BaseDamage:           e.BaseDamage,
		HeadBone:             e.HeadBone,
		CanAttack:            true,
		AttackWaitTime:       e.AttackWaitTime,
		CanHitReact:          true,
		HitReactTimeMin:      e.HitReactTimeMin,
		HitReactTimeMax:      e.HitReactTimeMax,
		StunDuration:         e.StunDuration,
		HealthBarDisplayTime: e.HealthBarDisplayTime,
		HitLabelLifetime:     e.HitLabelLifetime,
		DeathTime:            e.DeathTime,
		SwingVictim:          make(map[ecs.EntityID]bool),
		LeftWeaponSocket:     e.LeftWeaponSocket,
		RightWeaponSocket:    e.RightWeaponSocket,
		AttackMontage:        e.Montages.Attack,
		HitReactMontage:      e.Montages.HitReact,
		HitReactSection:      e.HitReactSection,
		DeathMontage:         e.Montages.Death,
		ImpactSound:          e.ImpactSound,
		ImpactParticles:      e.ImpactParticles,
		PatrolPoint:          e.PatrolPoint,
		PatrolPoint2:         e.PatrolPoint2,
	})
	em.AddComponent(id, &components.BlackboardComponent{
		CanAttack:    true,
		PatrolPoint:  position.Add(e.PatrolPoint.RotateYaw(yaw)),
		PatrolPoint2: position.Add(e.PatrolPoint2.RotateYaw(yaw)),
	})
	return id, nil
}
