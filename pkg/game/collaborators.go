package game

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// HitResult 射线检测结果
type HitResult struct {
	Blocking bool
	Location utils.Vec3
	Actor    ecs.EntityID // 命中的实体，InvalidEntity 表示命中静态场景
	Bone     string       // 命中的骨骼名(用于爆头判定)
}

// WorldQuery 只读的世界查询接口(射线、投影、插槽位置)
type WorldQuery interface {
	LineTrace(start, end utils.Vec3) HitResult
	DeprojectScreenToWorld(screenX, screenY float64) (origin, direction utils.Vec3, ok bool)
	ProjectWorldToScreen(location utils.Vec3) (x, y float64, ok bool)
	SocketLocation(actor ecs.EntityID, socket string) (utils.Vec3, bool)
}

// AnimationPlayer 播放动画片段，对战斗核心来说是"发出即忘"
type AnimationPlayer interface {
	Play(actor ecs.EntityID, montage, section string)
}

// Effects 音效与粒子
type Effects interface {
	PlaySound(name string, location utils.Vec3)
	SpawnParticles(name string, location utils.Vec3)
}

// KillNotifier 击杀通知(游戏模式的胜负统计)
type KillNotifier interface {
	PawnKilled(victim, instigator ecs.EntityID)
}

// EnemyCommands AI 决策方可以调用的敌人战斗操作
type EnemyCommands interface {
	PlayAttack(enemy ecs.EntityID, section string)
	AttackSectionName() string
	ActivateWeapon(enemy ecs.EntityID, side components.WeaponSide)
	DeactivateWeapon(enemy ecs.EntityID, side components.WeaponSide)
	FinishDeath(enemy ecs.EntityID)
}

// AIDecider 外部 AI 决策方，每帧收到黑板的只读副本
type AIDecider interface {
	Decide(enemy ecs.EntityID, snapshot components.BlackboardComponent, commands EnemyCommands, deltaTime float64)
}
