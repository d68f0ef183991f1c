package components

import "github.com/decker502/shooter/pkg/utils"

// TransformComponent 世界空间位姿
type TransformComponent struct {
	Position utils.Vec3
	Yaw      float64 // 偏航角(度)
	Scale    float64 // 统一缩放，1 为原始大小
}
