package systems

import (
	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/utils"
)

// ItemInterpSystem 物品飞向玩家锚点的插值引擎
//
// 垂直方向按曲线插值(输入为已用时间)，水平方向以固定速度趋近锚点，
// 偏航锁定为 观察者偏航 + 开始时的偏移。计时器到期后把物品交给背包。
type ItemInterpSystem struct {
	entityManager   *ecs.EntityManager
	scheduler       game.Scheduler
	inventory       *InventorySystem
	effects         game.Effects
	horizontalSpeed float64
	logger          zerolog.Logger
}

// NewItemInterpSystem 创建插值系统
func NewItemInterpSystem(em *ecs.EntityManager, scheduler game.Scheduler, inventory *InventorySystem, horizontalSpeed float64, logger zerolog.Logger) *ItemInterpSystem {
	return &ItemInterpSystem{
		entityManager:   em,
		scheduler:       scheduler,
		inventory:       inventory,
		horizontalSpeed: horizontalSpeed,
		logger:          logging.ForSystem(logger, "ItemInterpSystem"),
	}
}

// SetEffects 设置音效
func (s *ItemInterpSystem) SetEffects(fx game.Effects) { s.effects = fx }

// StartItemCurve 开始把 itemID 插值到 owner 的锚点
// forceSound 为 true 时跳过拾取音效的去重窗口
func (s *ItemInterpSystem) StartItemCurve(owner, itemID ecs.EntityID, forceSound bool) {
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, itemID)
	if !ok {
		return
	}
	interp, ok := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, itemID)
	if !ok || interp.Interping {
		return
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, itemID)
	if !ok {
		return
	}
	anchors, ok := ecs.GetComponent[*components.AnchorSetComponent](s.entityManager, owner)
	if !ok || len(anchors.Anchors) == 0 {
		return
	}

	isWeapon := ecs.HasComponent[*components.WeaponComponent](s.entityManager, itemID)
	index := chooseAnchor(anchors.Anchors, isWeapon)
	anchors.Anchors[index].ItemCount++

	if forceSound || (s.inventory != nil && s.inventory.ConsumePickupSound(owner)) {
		playSound(s.effects, item.PickupSound, tr.Position)
	}

	interp.Interping = true
	interp.Target = owner
	interp.AnchorIndex = index
	interp.StartPosition = tr.Position
	setItemState(item, components.ItemStateEquipInterpolating)
	item.CanChangeCustomDepth = false

	cameraYaw := 0.0
	if player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, owner); ok {
		cameraYaw = player.CameraYaw
	}
	interp.YawOffset = tr.Yaw - cameraYaw

	s.scheduler.SetTimer(game.TimerHandle{Owner: itemID, Purpose: game.TimerItemInterp}, interp.Duration, func() {
		s.finishInterp(itemID)
	})

	s.logger.Debug().Uint64("owner", uint64(owner)).Str("item", item.Name).Int("anchor", index).Msg("Item interpolation started")
}

// chooseAnchor 武器使用 0 号锚点；其余物品在 1..n-1 中选占用最少的，平局取下标最小
// 只有一个锚点时所有物品共用 0 号锚点；玩家配置校验要求至少两个锚点，这只会出现在手工组装的锚点集上
func chooseAnchor(anchors []components.InterpAnchor, isWeapon bool) int {
	if isWeapon || len(anchors) == 1 {
		return components.WeaponAnchorIndex
	}
	best := 1
	for i := 2; i < len(anchors); i++ {
		if anchors[i].ItemCount < anchors[best].ItemCount {
			best = i
		}
	}
	return best
}

// GetInterpolationAnchor 返回锚点的世界坐标(锚点偏移随相机偏航旋转)
func (s *ItemInterpSystem) GetInterpolationAnchor(owner ecs.EntityID, index int) (utils.Vec3, bool) {
	anchors, ok := ecs.GetComponent[*components.AnchorSetComponent](s.entityManager, owner)
	if !ok || index < 0 || index >= len(anchors.Anchors) {
		return utils.Vec3{}, false
	}
	yaw := 0.0
	if player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, owner); ok {
		yaw = player.CameraYaw
	}
	return actorLocation(s.entityManager, owner).Add(anchors.Anchors[index].Offset.RotateYaw(yaw)), true
}

// AnchorOccupancy 返回锚点当前的占用数
func (s *ItemInterpSystem) AnchorOccupancy(owner ecs.EntityID, index int) int {
	anchors, ok := ecs.GetComponent[*components.AnchorSetComponent](s.entityManager, owner)
	if !ok || index < 0 || index >= len(anchors.Anchors) {
		return 0
	}
	return anchors.Anchors[index].ItemCount
}

// Update 推进所有插值中物品的位置、朝向、缩放和发光
func (s *ItemInterpSystem) Update(deltaTime float64) {
	ids := ecs.GetEntitiesWith3[*components.ItemInterpComponent, *components.ItemComponent, *components.TransformComponent](s.entityManager)
	for _, id := range ids {
		interp, _ := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, id)
		if !interp.Interping {
			continue
		}
		elapsed, ok := s.scheduler.Elapsed(game.TimerHandle{Owner: id, Purpose: game.TimerItemInterp})
		if !ok {
			continue
		}
		anchor, ok := s.GetInterpolationAnchor(interp.Target, interp.AnchorIndex)
		if !ok {
			continue
		}
		item, _ := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)

		deltaZ := anchor.Z - interp.StartPosition.Z
		tr.Position = utils.Vec3{
			X: utils.InterpTo(tr.Position.X, anchor.X, deltaTime, s.horizontalSpeed),
			Y: utils.InterpTo(tr.Position.Y, anchor.Y, deltaTime, s.horizontalSpeed),
			Z: interp.StartPosition.Z + interp.ZCurve.Eval(elapsed)*deltaZ,
		}

		if player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, interp.Target); ok {
			tr.Yaw = player.CameraYaw + interp.YawOffset
		}
		if !interp.ScaleCurve.IsZero() {
			tr.Scale = interp.ScaleCurve.Eval(elapsed)
		}
		if !interp.PulseCurve.IsZero() {
			item.GlowPulse = interp.PulseCurve.Eval(elapsed)
		}
	}
}

// finishInterp 插值计时器到期：释放锚点并把物品交给背包
func (s *ItemInterpSystem) finishInterp(itemID ecs.EntityID) {
	interp, ok := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, itemID)
	if !ok || !interp.Interping {
		return
	}
	interp.Interping = false
	owner := interp.Target

	if anchors, ok := ecs.GetComponent[*components.AnchorSetComponent](s.entityManager, owner); ok {
		if i := interp.AnchorIndex; i >= 0 && i < len(anchors.Anchors) && anchors.Anchors[i].ItemCount > 0 {
			anchors.Anchors[i].ItemCount--
		}
	}

	if s.inventory != nil {
		s.inventory.ReceivePickup(owner, itemID)
		s.inventory.Unhighlight(owner)
	}

	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, itemID); ok {
		tr.Scale = 1
	}
	if item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, itemID); ok {
		item.GlowEnabled = false
		item.GlowPulse = 0
		item.CanChangeCustomDepth = true
		disableCustomDepth(item)
	}

	s.logger.Debug().Uint64("owner", uint64(owner)).Uint64("item", uint64(itemID)).Msg("Item interpolation finished")
}
