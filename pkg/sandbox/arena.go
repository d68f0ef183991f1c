// Package sandbox 提供一个不依赖引擎的最小世界，用于驱动战斗核心
//
// Arena 实现 game.WorldQuery：地面是 Z=0 平面，敌人是竖直圆柱，地上的物品是球体。
// 它同时负责重叠检测(拾取范围、警戒范围、攻击范围、近战武器)，把结果转成战斗系统的回调。
package sandbox

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/systems"
	"github.com/decker502/shooter/pkg/utils"
)

// ArenaConfig 碰撞体与相机参数(厘米/度)
type ArenaConfig struct {
	ScreenWidth  float64
	ScreenHeight float64
	FOV          float64 // 水平视野

	CameraDistance float64 // 相机在角色身后的距离
	CameraHeight   float64
	ShoulderOffset float64 // 越肩偏移，正值在右侧

	EnemyRadius float64
	EnemyHeight float64
	HeadHeight  float64 // 圆柱顶部这一段算头部
	ItemRadius  float64

	PickupRadius      float64 // 物品进入该半径计入重叠数
	AggroRadius       float64
	AttackRadius      float64
	MeleeReach        float64 // 近战插槽到玩家的命中距离
	WalkSpeed         float64
	PlayerDeathFinish float64 // 玩家死亡动画长度
}

// DefaultArenaConfig 默认参数
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		ScreenWidth:       1280,
		ScreenHeight:      720,
		FOV:               90,
		CameraDistance:    300,
		CameraHeight:      180,
		ShoulderOffset:    60,
		EnemyRadius:       40,
		EnemyHeight:       180,
		HeadHeight:        25,
		ItemRadius:        30,
		PickupRadius:      150,
		AggroRadius:       1500,
		AttackRadius:      150,
		MeleeReach:        90,
		WalkSpeed:         450,
		PlayerDeathFinish: 1.5,
	}
}

// 插槽在角色本地坐标系(X 向前，Y 向左，Z 向上)下的偏移
var socketOffsets = map[string]utils.Vec3{
	"BarrelSocket":  {X: 70, Y: -20, Z: 140},
	"FX_Trail_L_01": {X: 60, Y: 35, Z: 110},
	"FX_Trail_R_01": {X: 60, Y: -35, Z: 110},
}

// Arena 沙盒世界
type Arena struct {
	cfg    ArenaConfig
	sim    *systems.Simulation
	player ecs.EntityID

	pitch    float64 // 相机俯仰角，正值向上
	moveDir  utils.Vec3
	deadTime float64

	itemOverlaps  map[ecs.EntityID]bool
	aggroOverlaps map[ecs.EntityID]bool
	rangeOverlaps map[ecs.EntityID]bool

	logger zerolog.Logger
}

// NewArena 创建沙盒世界，需要在 Simulation 创建之后调用 Attach
func NewArena(cfg ArenaConfig, logger zerolog.Logger) *Arena {
	return &Arena{
		cfg:           cfg,
		itemOverlaps:  make(map[ecs.EntityID]bool),
		aggroOverlaps: make(map[ecs.EntityID]bool),
		rangeOverlaps: make(map[ecs.EntityID]bool),
		logger:        logging.ForSystem(logger, "Arena"),
	}
}

// Attach 绑定模拟和玩家，并注册为模拟的移动钩子
func (a *Arena) Attach(sim *systems.Simulation, player ecs.EntityID) {
	a.sim = sim
	a.player = player
	sim.SetMovementHook(a.Update)
}

// Player 返回绑定的玩家
func (a *Arena) Player() ecs.EntityID { return a.player }

// Config 返回世界参数
func (a *Arena) Config() ArenaConfig { return a.cfg }

// Pitch 返回相机俯仰角(度)
func (a *Arena) Pitch() float64 { return a.pitch }

// SetMoveInput 设置本帧的移动输入，forward/strafe 取值 [-1, 1]，相对相机朝向
func (a *Arena) SetMoveInput(forward, strafe float64) {
	a.moveDir = utils.Vec3{X: forward, Y: -strafe}
}

// Turn 转动相机；输入乘以战斗系统给出的视角灵敏度
func (a *Arena) Turn(yawDelta, pitchDelta float64) {
	player, ok := a.playerComponent()
	if !ok {
		return
	}
	scale := a.sim.Combat.LookScale(a.player)
	player.CameraYaw = math.Mod(player.CameraYaw+yawDelta*scale+360, 360)
	a.pitch = utils.Clamp(a.pitch+pitchDelta*scale, -60, 60)
}

// Update 移动钩子：移动玩家、对准准星、更新重叠状态
func (a *Arena) Update(deltaTime float64) {
	if a.sim == nil {
		return
	}
	em := a.sim.EntityManager
	player, ok := a.playerComponent()
	if !ok {
		return
	}
	player.CrosshairX = a.cfg.ScreenWidth / 2
	player.CrosshairY = a.cfg.ScreenHeight / 2

	tr, _ := ecs.GetComponent[*components.TransformComponent](em, a.player)
	if tr != nil {
		tr.Yaw = player.CameraYaw
		if a.canMove() && a.moveDir.Length() > 0 {
			step := a.moveDir.Normalize().RotateYaw(player.CameraYaw).Scale(a.cfg.WalkSpeed * deltaTime)
			tr.Position = tr.Position.Add(step)
		}
	}

	a.updatePlayerDeath(deltaTime)
	a.updateItemOverlaps()
	a.updateEnemyOverlaps()
}

func (a *Arena) canMove() bool {
	combat, ok := ecs.GetComponent[*components.CombatComponent](a.sim.EntityManager, a.player)
	return ok && !combat.InputDisabled && !a.sim.Combat.IsDead(a.player)
}

// updatePlayerDeath 玩家死亡动画播完后结束死亡流程
func (a *Arena) updatePlayerDeath(deltaTime float64) {
	if !a.sim.Combat.IsDead(a.player) {
		return
	}
	combat, ok := ecs.GetComponent[*components.CombatComponent](a.sim.EntityManager, a.player)
	if !ok || combat.InputDisabled {
		return
	}
	a.deadTime += deltaTime
	if a.deadTime >= a.cfg.PlayerDeathFinish {
		a.sim.Combat.FinishDeath(a.player)
	}
}

func (a *Arena) updateItemOverlaps() {
	em := a.sim.EntityManager
	center := actorPosition(em, a.player)

	current := make(map[ecs.EntityID]bool)
	for _, id := range ecs.GetEntitiesWith2[*components.ItemComponent, *components.TransformComponent](em) {
		item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
		if !item.CollisionEnabled || em.IsMarkedForDestroy(id) {
			continue
		}
		if actorPosition(em, id).Distance(center) <= a.cfg.PickupRadius+a.cfg.ItemRadius {
			current[id] = true
		}
	}

	for id := range current {
		if !a.itemOverlaps[id] {
			a.sim.Inventory.IncrementOverlapCount(a.player, 1)
		}
	}
	for id := range a.itemOverlaps {
		if !current[id] {
			a.sim.Inventory.IncrementOverlapCount(a.player, -1)
		}
	}
	a.itemOverlaps = current
}

func (a *Arena) updateEnemyOverlaps() {
	em := a.sim.EntityManager
	playerPos := actorPosition(em, a.player)
	playerAlive := !a.sim.Combat.IsDead(a.player)

	aggro := make(map[ecs.EntityID]bool)
	inRange := make(map[ecs.EntityID]bool)
	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.TransformComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
		dist := horizontalDistance(actorPosition(em, id), playerPos)

		if playerAlive && dist <= a.cfg.AggroRadius {
			aggro[id] = true
			if !a.aggroOverlaps[id] {
				a.sim.Enemies.AggroOverlap(id, a.player)
			}
		}
		if dist <= a.cfg.AttackRadius {
			inRange[id] = true
			if !a.rangeOverlaps[id] {
				a.sim.Enemies.AttackRangeOverlap(id, a.player, true)
			}
		} else if a.rangeOverlaps[id] {
			a.sim.Enemies.AttackRangeOverlap(id, a.player, false)
		}

		for _, side := range []components.WeaponSide{components.WeaponLeft, components.WeaponRight} {
			if !enemy.WeaponActive(side) {
				continue
			}
			socket, ok := a.SocketLocation(id, enemy.WeaponSocket(side))
			if ok && horizontalDistance(socket, playerPos) <= a.cfg.MeleeReach {
				a.sim.Enemies.WeaponOverlap(id, side, a.player)
			}
		}
	}
	a.aggroOverlaps = aggro
	a.rangeOverlaps = inRange
}

// LineTrace 线段检测，返回离起点最近的阻挡
func (a *Arena) LineTrace(start, end utils.Vec3) game.HitResult {
	if a.sim == nil {
		return game.HitResult{}
	}
	em := a.sim.EntityManager
	best := math.Inf(1)
	var result game.HitResult

	if start.Z > 0 && end.Z < 0 {
		t := start.Z / (start.Z - end.Z)
		best = t
		result = game.HitResult{Blocking: true, Location: lerp(start, end, t)}
	}

	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.TransformComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		t, ok := segmentCylinder(start, end, actorPosition(em, id), a.cfg.EnemyRadius, a.cfg.EnemyHeight)
		if !ok || t >= best {
			continue
		}
		best = t
		loc := lerp(start, end, t)
		bone := "spine_01"
		if loc.Z-actorPosition(em, id).Z >= a.cfg.EnemyHeight-a.cfg.HeadHeight {
			enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
			bone = enemy.HeadBone
		}
		result = game.HitResult{Blocking: true, Location: loc, Actor: id, Bone: bone}
	}

	for _, id := range ecs.GetEntitiesWith2[*components.ItemComponent, *components.TransformComponent](em) {
		item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
		if !item.CollisionEnabled || em.IsMarkedForDestroy(id) {
			continue
		}
		t, ok := segmentSphere(start, end, actorPosition(em, id), a.cfg.ItemRadius)
		if !ok || t >= best {
			continue
		}
		best = t
		result = game.HitResult{Blocking: true, Location: lerp(start, end, t), Actor: id}
	}
	return result
}

// cameraBasis 返回相机位置和前/右/上三个单位向量
func (a *Arena) cameraBasis() (origin, forward, right, up utils.Vec3, ok bool) {
	player, ok := a.playerComponent()
	if !ok {
		return
	}
	yaw := player.CameraYaw * math.Pi / 180
	pitch := a.pitch * math.Pi / 180
	forward = utils.Vec3{
		X: math.Cos(pitch) * math.Cos(yaw),
		Y: math.Cos(pitch) * math.Sin(yaw),
		Z: math.Sin(pitch),
	}
	right = utils.Vec3{X: math.Sin(yaw), Y: -math.Cos(yaw)}
	up = cross(right, forward)

	flat := utils.YawForward(player.CameraYaw)
	origin = actorPosition(a.sim.EntityManager, a.player).
		Add(flat.Scale(-a.cfg.CameraDistance)).
		Add(right.Scale(a.cfg.ShoulderOffset)).
		Add(utils.Vec3{Z: a.cfg.CameraHeight})
	return origin, forward, right, up, true
}

// DeprojectScreenToWorld 屏幕坐标转为相机射线
func (a *Arena) DeprojectScreenToWorld(screenX, screenY float64) (utils.Vec3, utils.Vec3, bool) {
	if a.sim == nil {
		return utils.Vec3{}, utils.Vec3{}, false
	}
	origin, forward, right, up, ok := a.cameraBasis()
	if !ok {
		return utils.Vec3{}, utils.Vec3{}, false
	}
	tanHalf := math.Tan(a.cfg.FOV * math.Pi / 360)
	aspect := a.cfg.ScreenHeight / a.cfg.ScreenWidth
	ndcX := 2*screenX/a.cfg.ScreenWidth - 1
	ndcY := 1 - 2*screenY/a.cfg.ScreenHeight

	dir := forward.
		Add(right.Scale(ndcX * tanHalf)).
		Add(up.Scale(ndcY * tanHalf * aspect))
	return origin, dir.Normalize(), true
}

// ProjectWorldToScreen 世界坐标投影到屏幕；在相机背后时返回 false
func (a *Arena) ProjectWorldToScreen(location utils.Vec3) (float64, float64, bool) {
	if a.sim == nil {
		return 0, 0, false
	}
	origin, forward, right, up, ok := a.cameraBasis()
	if !ok {
		return 0, 0, false
	}
	v := location.Sub(origin)
	depth := dot(v, forward)
	if depth <= 1e-6 {
		return 0, 0, false
	}
	tanHalf := math.Tan(a.cfg.FOV * math.Pi / 360)
	aspect := a.cfg.ScreenHeight / a.cfg.ScreenWidth
	ndcX := dot(v, right) / (depth * tanHalf)
	ndcY := dot(v, up) / (depth * tanHalf * aspect)
	return (ndcX + 1) * a.cfg.ScreenWidth / 2, (1 - ndcY) * a.cfg.ScreenHeight / 2, true
}

// SocketLocation 插槽的世界坐标
// 被持有的武器使用持有者的位置和相机朝向
func (a *Arena) SocketLocation(actor ecs.EntityID, socket string) (utils.Vec3, bool) {
	if a.sim == nil {
		return utils.Vec3{}, false
	}
	em := a.sim.EntityManager
	offset, known := socketOffsets[socket]
	if !known || !em.Exists(actor) {
		return utils.Vec3{}, false
	}

	base := actor
	if item, ok := ecs.GetComponent[*components.ItemComponent](em, actor); ok && item.Owner != ecs.InvalidEntity {
		base = item.Owner
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](em, base)
	if !ok {
		return utils.Vec3{}, false
	}
	yaw := tr.Yaw
	if player, ok := ecs.GetComponent[*components.PlayerComponent](em, base); ok {
		yaw = player.CameraYaw
	}
	return tr.Position.Add(offset.RotateYaw(yaw)), true
}

func (a *Arena) playerComponent() (*components.PlayerComponent, bool) {
	if a.sim == nil {
		return nil, false
	}
	return ecs.GetComponent[*components.PlayerComponent](a.sim.EntityManager, a.player)
}

func actorPosition(em *ecs.EntityManager, id ecs.EntityID) utils.Vec3 {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](em, id); ok {
		return tr.Position
	}
	return utils.Vec3{}
}

func horizontalDistance(a, b utils.Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func lerp(a, b utils.Vec3, t float64) utils.Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

func dot(a, b utils.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func cross(a, b utils.Vec3) utils.Vec3 {
	return utils.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// segmentSphere 线段与球的第一个交点参数 t∈[0,1]
func segmentSphere(start, end, center utils.Vec3, radius float64) (float64, bool) {
	d := end.Sub(start)
	f := start.Sub(center)
	qa := dot(d, d)
	if qa < 1e-12 {
		return 0, false
	}
	qb := 2 * dot(f, d)
	qc := dot(f, f) - radius*radius
	return firstRoot(qa, qb, qc)
}

// segmentCylinder 线段与竖直圆柱(底面在 base，高 height)侧面的第一个交点
// 起点在圆柱内部时视为 t=0 命中
func segmentCylinder(start, end, base utils.Vec3, radius, height float64) (float64, bool) {
	d := end.Sub(start)
	fx, fy := start.X-base.X, start.Y-base.Y
	qa := d.X*d.X + d.Y*d.Y
	qc := fx*fx + fy*fy - radius*radius

	var t float64
	if qc <= 0 {
		t = 0
	} else {
		if qa < 1e-12 {
			return 0, false
		}
		var ok bool
		if t, ok = firstRoot(qa, 2*(fx*d.X+fy*d.Y), qc); !ok {
			return 0, false
		}
	}
	z := start.Z + d.Z*t - base.Z
	if z < 0 || z > height {
		return 0, false
	}
	return t, true
}

func firstRoot(qa, qb, qc float64) (float64, bool) {
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	for _, t := range []float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)} {
		if t >= 0 && t <= 1 {
			return t, true
		}
	}
	return 0, false
}
