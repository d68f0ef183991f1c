package components

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// HitLabelComponent 飘字伤害数字，绑定在命中点的世界坐标上
type HitLabelComponent struct {
	Target   ecs.EntityID // 被命中的角色
	Damage   float64
	Headshot bool
	Location utils.Vec3

	// 每帧投影到屏幕的位置
	ScreenX, ScreenY float64
	OnScreen         bool
}
