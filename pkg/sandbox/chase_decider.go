package sandbox

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/utils"
)

// ChaseConfig 追击 AI 参数
type ChaseConfig struct {
	MoveSpeed     float64 // 追击速度(厘米/秒)
	PatrolSpeed   float64
	StopDistance  float64 // 离目标多近时停下
	SwingWindow   float64 // 每次攻击武器碰撞体打开的时长
	DeathAnimTime float64 // 死亡动画长度，结束后通知 FinishDeath
}

// DefaultChaseConfig 默认参数
func DefaultChaseConfig() ChaseConfig {
	return ChaseConfig{
		MoveSpeed:     300,
		PatrolSpeed:   150,
		StopDistance:  100,
		SwingWindow:   0.4,
		DeathAnimTime: 1.2,
	}
}

type swing struct {
	side      components.WeaponSide
	remaining float64
}

type chaseState struct {
	swing       *swing
	patrolIndex int
	dyingFor    float64
	finished    bool
}

// ChaseDecider 一个简单的行为：有目标时追击并在攻击范围内出手，否则在两个巡逻点之间往返
// 实现 game.AIDecider，只读取黑板副本，移动直接写 TransformComponent
type ChaseDecider struct {
	cfg    ChaseConfig
	em     *ecs.EntityManager
	states map[ecs.EntityID]*chaseState
	logger zerolog.Logger
}

// NewChaseDecider 创建追击 AI，Attach 之前 Decide 为空操作
func NewChaseDecider(cfg ChaseConfig, logger zerolog.Logger) *ChaseDecider {
	return &ChaseDecider{
		cfg:    cfg,
		states: make(map[ecs.EntityID]*chaseState),
		logger: logging.ForSystem(logger, "ChaseDecider"),
	}
}

// Attach 绑定实体管理器
func (d *ChaseDecider) Attach(em *ecs.EntityManager) { d.em = em }

// Decide 每帧为一个敌人做一次决策
func (d *ChaseDecider) Decide(enemy ecs.EntityID, bb components.BlackboardComponent, cmd game.EnemyCommands, deltaTime float64) {
	if d.em == nil {
		return
	}
	st := d.state(enemy)

	if st.swing != nil {
		st.swing.remaining -= deltaTime
		if st.swing.remaining <= 0 || bb.Dead || bb.Stunned {
			cmd.DeactivateWeapon(enemy, st.swing.side)
			st.swing = nil
		}
	}

	if bb.Dead {
		if !st.finished {
			st.dyingFor += deltaTime
			if st.dyingFor >= d.cfg.DeathAnimTime {
				cmd.FinishDeath(enemy)
				st.finished = true
			}
		}
		return
	}
	if bb.Stunned {
		return
	}

	tr, ok := ecs.GetComponent[*components.TransformComponent](d.em, enemy)
	if !ok {
		return
	}

	hasTarget := bb.Target != ecs.InvalidEntity && !bb.CharacterIsDead && d.em.Exists(bb.Target)
	if !hasTarget {
		d.patrol(st, tr, bb, deltaTime)
		return
	}

	targetPos := actorPosition(d.em, bb.Target)
	faceTowards(tr, targetPos)

	if bb.InAttackRange {
		if bb.CanAttack && st.swing == nil {
			section := cmd.AttackSectionName()
			cmd.PlayAttack(enemy, section)
			side := sideForSection(section)
			cmd.ActivateWeapon(enemy, side)
			st.swing = &swing{side: side, remaining: d.cfg.SwingWindow}
			d.logger.Debug().Uint64("enemy", uint64(enemy)).Str("section", section).Stringer("side", side).Msg("Swing")
		}
		return
	}
	moveTowards(tr, targetPos, d.cfg.MoveSpeed*deltaTime, d.cfg.StopDistance)
}

// Prune 清理已销毁敌人的状态
func (d *ChaseDecider) Prune() {
	if d.em == nil {
		return
	}
	for id := range d.states {
		if !d.em.Exists(id) {
			delete(d.states, id)
		}
	}
}

func (d *ChaseDecider) state(enemy ecs.EntityID) *chaseState {
	st, ok := d.states[enemy]
	if !ok {
		st = &chaseState{}
		d.states[enemy] = st
	}
	return st
}

func (d *ChaseDecider) patrol(st *chaseState, tr *components.TransformComponent, bb components.BlackboardComponent, deltaTime float64) {
	points := [2]utils.Vec3{bb.PatrolPoint, bb.PatrolPoint2}
	goal := points[st.patrolIndex%2]
	if horizontalDistance(tr.Position, goal) <= d.cfg.StopDistance {
		st.patrolIndex++
		return
	}
	faceTowards(tr, goal)
	moveTowards(tr, goal, d.cfg.PatrolSpeed*deltaTime, d.cfg.StopDistance)
}

// sideForSection 左手攻击片段用左手武器，其余用右手
func sideForSection(section string) components.WeaponSide {
	if strings.Contains(section, "_L") {
		return components.WeaponLeft
	}
	return components.WeaponRight
}

func faceTowards(tr *components.TransformComponent, target utils.Vec3) {
	dx, dy := target.X-tr.Position.X, target.Y-tr.Position.Y
	if dx*dx+dy*dy < 1e-6 {
		return
	}
	tr.Yaw = math.Atan2(dy, dx) * 180 / math.Pi
}

// moveTowards 水平方向移动 step，不越过离目标 stop 的位置
func moveTowards(tr *components.TransformComponent, target utils.Vec3, step, stop float64) {
	delta := utils.Vec3{X: target.X - tr.Position.X, Y: target.Y - tr.Position.Y}
	dist := delta.Length()
	if dist <= stop {
		return
	}
	step = math.Min(step, dist-stop)
	tr.Position = tr.Position.Add(delta.Normalize().Scale(step))
}
