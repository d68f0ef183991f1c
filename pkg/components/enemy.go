package components

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// WeaponSide 敌人的左右手武器碰撞体
type WeaponSide int

const (
	WeaponLeft WeaponSide = iota
	WeaponRight
)

func (s WeaponSide) String() string {
	if s == WeaponLeft {
		return "left"
	}
	return "right"
}

// EnemyComponent 敌人的战斗数据
type EnemyComponent struct {
	Name       string
	BaseDamage float64
	HeadBone   string

	CanAttack      bool
	AttackWaitTime float64

	CanHitReact     bool
	HitReactTimeMin float64
	HitReactTimeMax float64
	StunDuration    float64
	Stunned         bool
	Dying           bool

	InAttackRange bool

	HealthBarVisible     bool
	HealthBarDisplayTime float64
	HitLabelLifetime     float64
	DeathTime            float64

	// 武器碰撞窗口，由攻击动画的通知打开/关闭
	LeftWeaponActive  bool
	RightWeaponActive bool
	// 当前挥击编号及本次挥击已命中的目标，同一次挥击对同一目标只结算一次
	SwingID     int
	SwingVictim map[ecs.EntityID]bool

	LeftWeaponSocket  string
	RightWeaponSocket string

	AttackMontage   string
	HitReactMontage string
	HitReactSection string
	DeathMontage    string

	ImpactSound     string
	ImpactParticles string

	// 出生点本地坐标系下的巡逻点
	PatrolPoint  utils.Vec3
	PatrolPoint2 utils.Vec3
}

// WeaponActive 返回对应武器碰撞体是否打开
func (e *EnemyComponent) WeaponActive(side WeaponSide) bool {
	if side == WeaponLeft {
		return e.LeftWeaponActive
	}
	return e.RightWeaponActive
}

// WeaponSocket 返回对应武器的插槽名
func (e *EnemyComponent) WeaponSocket(side WeaponSide) string {
	if side == WeaponLeft {
		return e.LeftWeaponSocket
	}
	return e.RightWeaponSocket
}
