package components

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// WeaponAnchorIndex 武器专用的插值锚点
const WeaponAnchorIndex = 0

// InterpAnchor 物品飞向的玩家相对锚点
type InterpAnchor struct {
	Offset    utils.Vec3 // 相对玩家(随玩家偏航旋转)的偏移
	ItemCount int        // 正在飞向该锚点的物品数，不小于 0
}

// AnchorSetComponent 玩家身上的一组插值锚点
// 下标 0 保留给武器，其余用于弹药等物品的负载均衡
type AnchorSetComponent struct {
	Anchors []InterpAnchor
}

// ItemInterpComponent 物品飞向锚点的插值状态
type ItemInterpComponent struct {
	Interping     bool
	Target        ecs.EntityID // 接收物品的角色
	AnchorIndex   int
	StartPosition utils.Vec3
	YawOffset     float64 // 插值开始时 物品偏航 - 观察者偏航

	Duration   float64      // 插值总时长(秒)
	ZCurve     utils.Curve  // 垂直方向曲线，输入为已用时间
	ScaleCurve *utils.Curve // 可选缩放曲线
	PulseCurve *utils.Curve // 可选发光脉冲曲线
}
