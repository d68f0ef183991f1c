package systems

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/metrics"
	"github.com/decker502/shooter/pkg/utils"
)

// 敌人没有配置飘字寿命时使用的默认值(秒)
const defaultHitLabelLifetime = 1.0

// DamageSystem 伤害、硬直判定和死亡转换
//
// 生命值降到 0 是唯一不可逆的状态转换；之后对该目标的任何伤害都是空操作。
type DamageSystem struct {
	entityManager *ecs.EntityManager
	rng           *rand.Rand
	combat        *CombatSystem
	enemies       *EnemyCombatSystem
	world         game.WorldQuery
	effects       game.Effects
	notifier      game.KillNotifier
	events        *game.EventQueue
	metrics       *metrics.CombatMetrics
	logger        zerolog.Logger
}

// NewDamageSystem 创建伤害系统；rng 为 nil 时使用固定种子
func NewDamageSystem(em *ecs.EntityManager, rng *rand.Rand, logger zerolog.Logger) *DamageSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &DamageSystem{
		entityManager: em,
		rng:           rng,
		logger:        logging.ForSystem(logger, "DamageSystem"),
	}
}

// SetCombatSystem 设置玩家战斗状态机(玩家硬直与死亡)
func (s *DamageSystem) SetCombatSystem(c *CombatSystem) { s.combat = c }

// SetEnemyCombatSystem 设置敌人战斗驱动(敌人硬直、仇恨与死亡)
func (s *DamageSystem) SetEnemyCombatSystem(e *EnemyCombatSystem) { s.enemies = e }

// SetWorldQuery 设置世界查询(近战粒子的插槽位置)
func (s *DamageSystem) SetWorldQuery(world game.WorldQuery) { s.world = world }

// SetEffects 设置音效/粒子
func (s *DamageSystem) SetEffects(fx game.Effects) { s.effects = fx }

// SetKillNotifier 设置击杀通知方
func (s *DamageSystem) SetKillNotifier(n game.KillNotifier) { s.notifier = n }

// SetEventQueue 设置出站事件队列
func (s *DamageSystem) SetEventQueue(q *game.EventQueue) { s.events = q }

// SetMetrics 设置计数器
func (s *DamageSystem) SetMetrics(m *metrics.CombatMetrics) { s.metrics = m }

func (s *DamageSystem) actorKind(id ecs.EntityID) string {
	if ecs.HasComponent[*components.EnemyComponent](s.entityManager, id) {
		return "enemy"
	}
	if ecs.HasComponent[*components.PlayerComponent](s.entityManager, id) {
		return "player"
	}
	return "unknown"
}

// TakeDamage 实现 game.Damageable
func (s *DamageSystem) TakeDamage(target ecs.EntityID, amount float64, instigator ecs.EntityID) {
	s.ApplyDamage(target, amount, instigator)
}

// ApplyDamage 扣除生命值
//
// 致命伤害把生命值夹到 0 并触发死亡(只通知一次)，不再进行硬直判定。
// 非致命伤害更新仇恨目标，然后按目标的硬直概率掷骰。
func (s *DamageSystem) ApplyDamage(target ecs.EntityID, amount float64, instigator ecs.EntityID) {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, target)
	if !ok || health.Dead || amount <= 0 {
		return
	}
	kind := s.actorKind(target)

	if health.Current-amount <= 0 {
		s.metrics.DamageApplied(kind, health.Current)
		health.Current = 0
		s.kill(target, instigator, kind)
		return
	}

	health.Current -= amount
	s.metrics.DamageApplied(kind, amount)
	if s.enemies != nil && kind == "enemy" {
		s.enemies.OnDamaged(target, instigator)
	}
	s.AttemptStun(target)
}

// kill 死亡转换
func (s *DamageSystem) kill(target, instigator ecs.EntityID, kind string) {
	health, _ := ecs.GetComponent[*components.HealthComponent](s.entityManager, target)
	health.Dead = true

	s.events.Push(game.DeathEvent{Victim: target, Instigator: instigator})
	if s.notifier != nil {
		s.notifier.PawnKilled(target, instigator)
	}
	s.metrics.Killed(kind)

	switch kind {
	case "enemy":
		if s.enemies != nil {
			s.enemies.Die(target)
		}
	case "player":
		if s.combat != nil {
			s.combat.HandleDeath(target)
		}
		if s.enemies != nil && ecs.HasComponent[*components.EnemyComponent](s.entityManager, instigator) {
			s.enemies.OnCharacterKilled(instigator)
		}
	}

	s.logger.Info().Uint64("victim", uint64(target)).Uint64("instigator", uint64(instigator)).Str("kind", kind).Msg("Actor killed")
}

// AttemptStun 按目标硬直概率掷骰，命中时对目标发起硬直
func (s *DamageSystem) AttemptStun(target ecs.EntityID) bool {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, target)
	if !ok || health.Dead || health.StunChance <= 0 {
		return false
	}
	if s.rng.Float64() > health.StunChance {
		return false
	}

	switch {
	case ecs.HasComponent[*components.CombatComponent](s.entityManager, target):
		if s.combat != nil {
			s.combat.RequestStun(target)
		}
	case ecs.HasComponent[*components.EnemyComponent](s.entityManager, target):
		if s.enemies != nil {
			s.enemies.RequestStun(target)
		}
	}
	return true
}

// ApplyBulletHit 结算一次子弹命中：命中表现、爆头判定、伤害和飘字
func (s *DamageSystem) ApplyBulletHit(shooter ecs.EntityID, hit game.HitResult, weaponID ecs.EntityID) {
	if !hit.Blocking || hit.Actor == ecs.InvalidEntity {
		return
	}
	weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.entityManager, weaponID)
	if !ok {
		return
	}

	enemy, isEnemy := ecs.GetComponent[*components.EnemyComponent](s.entityManager, hit.Actor)
	if isEnemy {
		playSound(s.effects, enemy.ImpactSound, hit.Location)
		spawnParticles(s.effects, enemy.ImpactParticles, hit.Location)
	}

	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, hit.Actor)
	if !ok {
		return
	}
	wasAlive := !health.Dead

	headshot := isEnemy && enemy.HeadBone != "" && hit.Bone == enemy.HeadBone
	damage := weapon.Damage
	if headshot {
		damage = weapon.HeadshotDamage
	}

	s.ApplyDamage(hit.Actor, damage, shooter)
	if wasAlive && isEnemy {
		s.ShowHitMarker(hit.Actor, damage, hit.Location, headshot)
	}
}

// ApplyMeleeHit 结算敌人武器碰撞体对 victim 的命中
// 只在碰撞窗口打开时有效，同一次挥击对同一目标只结算一次
func (s *DamageSystem) ApplyMeleeHit(attacker ecs.EntityID, side components.WeaponSide, victim ecs.EntityID) {
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](s.entityManager, attacker)
	if !ok || enemy.Dying || !enemy.WeaponActive(side) {
		return
	}
	victimCombat, ok := ecs.GetComponent[*components.CombatComponent](s.entityManager, victim)
	if !ok || s.isDead(victim) {
		return
	}
	if enemy.SwingVictim == nil {
		enemy.SwingVictim = make(map[ecs.EntityID]bool)
	}
	if enemy.SwingVictim[victim] {
		return
	}
	enemy.SwingVictim[victim] = true

	s.ApplyDamage(victim, enemy.BaseDamage, attacker)

	attackerLoc := actorLocation(s.entityManager, attacker)
	playSound(s.effects, victimCombat.MeleeImpactSound, attackerLoc)

	socketLoc := attackerLoc
	if s.world != nil {
		if loc, ok := s.world.SocketLocation(attacker, enemy.WeaponSocket(side)); ok {
			socketLoc = loc
		}
	}
	spawnParticles(s.effects, victimCombat.HitParticles, socketLoc)

	s.logger.Debug().Uint64("attacker", uint64(attacker)).Uint64("victim", uint64(victim)).Stringer("side", side).Int("swing", enemy.SwingID).Msg("Melee hit")
}

// ShowHitMarker 在命中点生成伤害飘字
func (s *DamageSystem) ShowHitMarker(target ecs.EntityID, damage float64, location utils.Vec3, headshot bool) ecs.EntityID {
	lifetime := defaultHitLabelLifetime
	if enemy, ok := ecs.GetComponent[*components.EnemyComponent](s.entityManager, target); ok && enemy.HitLabelLifetime > 0 {
		lifetime = enemy.HitLabelLifetime
	}

	label := s.entityManager.CreateEntity()
	s.entityManager.AddComponent(label, &components.HitLabelComponent{
		Target:   target,
		Damage:   damage,
		Headshot: headshot,
		Location: location,
	})
	s.entityManager.AddComponent(label, &components.LifetimeComponent{MaxLifetime: lifetime})

	s.events.Push(game.HitMarkerEvent{Label: label, Target: target, Damage: damage, Location: location, Headshot: headshot})
	return label
}

func (s *DamageSystem) isDead(id ecs.EntityID) bool {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id)
	return ok && health.Dead
}
