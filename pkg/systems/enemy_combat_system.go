package systems

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/metrics"
)

// EnemyCombatSystem 敌人一侧的战斗驱动
//
// 管理攻击冷却、受击硬直、武器碰撞窗口、血条和死亡流程，
// 并把状态同步到黑板；外部 AI 每帧拿到黑板副本，通过 game.EnemyCommands 回调本系统。
type EnemyCombatSystem struct {
	entityManager *ecs.EntityManager
	scheduler     game.Scheduler
	rng           *rand.Rand
	sections      []string
	anim          game.AnimationPlayer
	events        *game.EventQueue
	metrics       *metrics.CombatMetrics
	damage        *DamageSystem
	decider       game.AIDecider
	logger        zerolog.Logger
}

// NewEnemyCombatSystem 创建敌人战斗驱动；sections 为可随机选择的攻击动画片段
func NewEnemyCombatSystem(em *ecs.EntityManager, scheduler game.Scheduler, rng *rand.Rand, sections []string, logger zerolog.Logger) *EnemyCombatSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &EnemyCombatSystem{
		entityManager: em,
		scheduler:     scheduler,
		rng:           rng,
		sections:      append([]string(nil), sections...),
		logger:        logging.ForSystem(logger, "EnemyCombatSystem"),
	}
}

// SetAnimationPlayer 设置动画播放器
func (s *EnemyCombatSystem) SetAnimationPlayer(anim game.AnimationPlayer) { s.anim = anim }

// SetEventQueue 设置出站事件队列
func (s *EnemyCombatSystem) SetEventQueue(q *game.EventQueue) { s.events = q }

// SetMetrics 设置计数器
func (s *EnemyCombatSystem) SetMetrics(m *metrics.CombatMetrics) { s.metrics = m }

// SetDamageSystem 设置近战命中的结算方
func (s *EnemyCombatSystem) SetDamageSystem(d *DamageSystem) { s.damage = d }

// SetDecider 设置外部 AI 决策方
func (s *EnemyCombatSystem) SetDecider(d game.AIDecider) { s.decider = d }

// enemy 取敌人组件和黑板；两者都由 entities.NewEnemy 创建，缺一即视为不是敌人
func (s *EnemyCombatSystem) enemy(id ecs.EntityID) (*components.EnemyComponent, *components.BlackboardComponent, bool) {
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](s.entityManager, id)
	if !ok {
		return nil, nil, false
	}
	bb, ok := ecs.GetComponent[*components.BlackboardComponent](s.entityManager, id)
	if !ok {
		return nil, nil, false
	}
	return enemy, bb, true
}

// Update 把每个敌人的黑板副本交给 AI 决策方
func (s *EnemyCombatSystem) Update(deltaTime float64) {
	if s.decider == nil {
		return
	}
	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.BlackboardComponent](s.entityManager) {
		if s.entityManager.IsMarkedForDestroy(id) {
			continue
		}
		bb, _ := ecs.GetComponent[*components.BlackboardComponent](s.entityManager, id)
		s.decider.Decide(id, *bb, s, deltaTime)
	}
}

// PlayAttack 播放攻击动画，进入攻击冷却并开始新的一次挥击
// 冷却中、硬直中或死亡中调用为空操作
func (s *EnemyCombatSystem) PlayAttack(id ecs.EntityID, section string) {
	enemy, bb, ok := s.enemy(id)
	if !ok || !enemy.CanAttack || enemy.Dying || enemy.Stunned {
		return
	}
	playMontage(s.anim, id, enemy.AttackMontage, section)

	enemy.CanAttack = false
	bb.CanAttack = false
	enemy.SwingID++
	enemy.SwingVictim = make(map[ecs.EntityID]bool)
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerAttackWait}, enemy.AttackWaitTime, func() {
		current, bb, ok := s.enemy(id)
		if !ok || current.Dying {
			return
		}
		current.CanAttack = true
		current.LeftWeaponActive = false
		current.RightWeaponActive = false
		bb.CanAttack = true
	})

	s.logger.Debug().Uint64("enemy", uint64(id)).Str("section", section).Msg("Attack started")
}

// AttackSectionName 随机选择一个攻击动画片段
func (s *EnemyCombatSystem) AttackSectionName() string {
	if len(s.sections) == 0 {
		return ""
	}
	return s.sections[s.rng.Intn(len(s.sections))]
}

// ActivateWeapon 打开武器碰撞窗口
// 只在 PlayAttack 开始的攻击冷却内有效，同一次挥击里反复打开窗口不会重置已命中的目标
func (s *EnemyCombatSystem) ActivateWeapon(id ecs.EntityID, side components.WeaponSide) {
	enemy, _, ok := s.enemy(id)
	if !ok || enemy.Dying || !s.attacking(id, enemy) {
		return
	}
	if side == components.WeaponLeft {
		enemy.LeftWeaponActive = true
	} else {
		enemy.RightWeaponActive = true
	}
}

// attacking 敌人是否处于一次攻击中
func (s *EnemyCombatSystem) attacking(id ecs.EntityID, enemy *components.EnemyComponent) bool {
	return !enemy.CanAttack && s.scheduler.IsActive(game.TimerHandle{Owner: id, Purpose: game.TimerAttackWait})
}

// DeactivateWeapon 关闭武器碰撞窗口
func (s *EnemyCombatSystem) DeactivateWeapon(id ecs.EntityID, side components.WeaponSide) {
	enemy, _, ok := s.enemy(id)
	if !ok {
		return
	}
	if side == components.WeaponLeft {
		enemy.LeftWeaponActive = false
	} else {
		enemy.RightWeaponActive = false
	}
}

// WeaponOverlap 武器碰撞体与 victim 重叠
func (s *EnemyCombatSystem) WeaponOverlap(id ecs.EntityID, side components.WeaponSide, victim ecs.EntityID) {
	if s.damage == nil {
		return
	}
	s.damage.ApplyMeleeHit(id, side, victim)
}

// RequestStun 敌人受击硬直
// 受击反应冷却中不会再次硬直；冷却时长在 [HitReactTimeMin, HitReactTimeMax] 内随机
func (s *EnemyCombatSystem) RequestStun(id ecs.EntityID) {
	enemy, _, ok := s.enemy(id)
	if !ok || enemy.Dying || !enemy.CanHitReact {
		return
	}
	if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id); ok && health.Current <= 0 {
		return
	}

	playMontage(s.anim, id, enemy.HitReactMontage, enemy.HitReactSection)

	enemy.CanHitReact = false
	cooldown := enemy.HitReactTimeMin
	if span := enemy.HitReactTimeMax - enemy.HitReactTimeMin; span > 0 {
		cooldown += s.rng.Float64() * span
	}
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerHitReact}, cooldown, func() {
		if current, _, ok := s.enemy(id); ok {
			current.CanHitReact = true
		}
	})

	s.setStunned(id, true)
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerStun}, enemy.StunDuration, func() {
		if current, _, ok := s.enemy(id); ok && !current.Dying {
			s.setStunned(id, false)
		}
	})

	s.metrics.Stunned("enemy")
	s.logger.Debug().Uint64("enemy", uint64(id)).Float64("cooldown", cooldown).Msg("Enemy stunned")
}

func (s *EnemyCombatSystem) setStunned(id ecs.EntityID, stunned bool) {
	enemy, bb, ok := s.enemy(id)
	if !ok {
		return
	}
	enemy.Stunned = stunned
	bb.Stunned = stunned
}

// OnDamaged 非致命受击：把攻击者设为仇恨目标并显示血条
func (s *EnemyCombatSystem) OnDamaged(id, instigator ecs.EntityID) {
	_, bb, ok := s.enemy(id)
	if !ok {
		return
	}
	if instigator != ecs.InvalidEntity {
		bb.Target = instigator
	}
	s.ShowHealthBar(id)
}

// ShowHealthBar 显示血条，一段时间后自动隐藏；重复调用会重新计时
func (s *EnemyCombatSystem) ShowHealthBar(id ecs.EntityID) {
	enemy, _, ok := s.enemy(id)
	if !ok || enemy.Dying {
		return
	}
	if !enemy.HealthBarVisible {
		enemy.HealthBarVisible = true
		s.events.Push(game.HealthBarEvent{Enemy: id, Visible: true})
	}
	s.scheduler.SetTimer(game.TimerHandle{Owner: id, Purpose: game.TimerHealthBar}, enemy.HealthBarDisplayTime, func() {
		s.HideHealthBar(id)
	})
}

// HideHealthBar 隐藏血条
func (s *EnemyCombatSystem) HideHealthBar(id ecs.EntityID) {
	enemy, _, ok := s.enemy(id)
	if !ok {
		return
	}
	s.scheduler.ClearTimer(game.TimerHandle{Owner: id, Purpose: game.TimerHealthBar})
	if !enemy.HealthBarVisible {
		return
	}
	enemy.HealthBarVisible = false
	s.events.Push(game.HealthBarEvent{Enemy: id, Visible: false})
}

// AggroOverlap 玩家进入警戒范围：设为仇恨目标
func (s *EnemyCombatSystem) AggroOverlap(id, other ecs.EntityID) {
	_, bb, ok := s.enemy(id)
	if !ok || !ecs.HasComponent[*components.PlayerComponent](s.entityManager, other) {
		return
	}
	bb.Target = other
}

// AttackRangeOverlap 玩家进入/离开攻击范围
func (s *EnemyCombatSystem) AttackRangeOverlap(id, other ecs.EntityID, inRange bool) {
	enemy, bb, ok := s.enemy(id)
	if !ok || !ecs.HasComponent[*components.PlayerComponent](s.entityManager, other) {
		return
	}
	enemy.InAttackRange = inRange
	bb.InAttackRange = inRange
}

// Die 敌人死亡：取消所有待定动作，播放死亡动画，黑板标记死亡
func (s *EnemyCombatSystem) Die(id ecs.EntityID) {
	enemy, bb, ok := s.enemy(id)
	if !ok || enemy.Dying {
		return
	}
	enemy.Dying = true
	s.HideHealthBar(id)

	for _, purpose := range []game.TimerPurpose{game.TimerAttackWait, game.TimerHitReact, game.TimerStun} {
		s.scheduler.ClearTimer(game.TimerHandle{Owner: id, Purpose: purpose})
	}
	enemy.LeftWeaponActive = false
	enemy.RightWeaponActive = false
	enemy.CanAttack = false
	enemy.Stunned = false

	bb.Dead = true
	bb.CanAttack = false
	bb.Stunned = false

	playMontage(s.anim, id, enemy.DeathMontage, "")
	s.logger.Info().Uint64("enemy", uint64(id)).Str("name", enemy.Name).Msg("Enemy dying")
}

// FinishDeath 死亡动画结束：DeathTime 秒后销毁敌人
func (s *EnemyCombatSystem) FinishDeath(id ecs.EntityID) {
	enemy, _, ok := s.enemy(id)
	if !ok || !enemy.Dying {
		return
	}
	handle := game.TimerHandle{Owner: id, Purpose: game.TimerDeath}
	if s.scheduler.IsActive(handle) || s.entityManager.IsMarkedForDestroy(id) {
		return
	}
	s.scheduler.SetTimer(handle, enemy.DeathTime, func() {
		s.entityManager.DestroyEntity(id)
	})
}

// OnCharacterKilled 本敌人击杀了玩家
func (s *EnemyCombatSystem) OnCharacterKilled(id ecs.EntityID) {
	if _, bb, ok := s.enemy(id); ok {
		bb.CharacterIsDead = true
	}
}
