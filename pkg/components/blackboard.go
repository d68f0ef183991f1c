package components

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// BlackboardComponent 敌人 AI 的决策输入
// 只由战斗/伤害系统写入，AI 决策方每帧拿到的是只读副本
type BlackboardComponent struct {
	Target          ecs.EntityID // 仇恨目标
	CanAttack       bool
	InAttackRange   bool
	Stunned         bool
	Dead            bool
	CharacterIsDead bool // 被本敌人击杀的玩家已死亡
	PatrolPoint     utils.Vec3
	PatrolPoint2    utils.Vec3
}
