package components

import "github.com/decker502/shooter/pkg/ecs"

// CombatState 角色当前的战斗动作模式
// 每个角色同一时刻只有一个状态；死亡不在枚举内，由 HealthComponent.Dead 表示
type CombatState int

const (
	// CombatStateUnoccupied 空闲，可以开火、换弹、切枪
	CombatStateUnoccupied CombatState = iota
	// CombatStateFireTimerInProgress 射击间隔冷却中
	CombatStateFireTimerInProgress
	// CombatStateReloading 换弹中
	CombatStateReloading
	// CombatStateEquipping 切换武器中
	CombatStateEquipping
	// CombatStateStunned 受击硬直，可打断任何其他状态
	CombatStateStunned
)

// String 返回状态名称(日志用)
func (s CombatState) String() string {
	switch s {
	case CombatStateUnoccupied:
		return "Unoccupied"
	case CombatStateFireTimerInProgress:
		return "FireTimerInProgress"
	case CombatStateReloading:
		return "Reloading"
	case CombatStateEquipping:
		return "Equipping"
	case CombatStateStunned:
		return "Stunned"
	default:
		return "Unknown"
	}
}

// CombatComponent 玩家角色的战斗状态
type CombatComponent struct {
	State          CombatState  // 当前战斗状态
	EquippedWeapon ecs.EntityID // 当前装备的武器，InvalidEntity 表示未装备

	FireButtonHeld bool // 开火键是否按住(自动武器连发依赖它)
	AimButtonHeld  bool // 瞄准键是否按住
	Aiming         bool // 当前是否处于瞄准姿态

	FiringBullet  bool // 准星射击扩散窗口是否打开
	InputDisabled bool // 死亡动画结束后禁用输入

	// 动画名
	HipFireMontage  string
	ReloadMontage   string
	EquipMontage    string
	HitReactMontage string
	DeathMontage    string

	// 非换弹动作的时长(秒)
	EquipDuration      float64
	StunDuration       float64
	ShootWindowSeconds float64

	HipLookRate float64 // 腰射视角灵敏度
	AimLookRate float64 // 瞄准视角灵敏度

	HitParticles     string // 被近战命中时在攻击者武器插槽处生成的粒子
	MeleeImpactSound string // 被近战命中时在攻击者位置播放的音效
}
