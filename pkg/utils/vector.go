package utils

import "math"

// Vec3 三维向量，单位与世界坐标一致(厘米)
// Z 轴朝上，Yaw 绕 Z 轴旋转，单位为度
type Vec3 struct {
	X, Y, Z float64
}

// Add 向量相加
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub 向量相减
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale 向量数乘
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length 向量长度
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance 两点距离
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Normalize 返回单位向量；零向量原样返回
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < 1e-9 {
		return v
	}
	return v.Scale(1 / l)
}

// RotateYaw 绕 Z 轴旋转 yawDegrees 度
func (v Vec3) RotateYaw(yawDegrees float64) Vec3 {
	rad := yawDegrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec3{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
		Z: v.Z,
	}
}

// YawForward 返回给定偏航角的水平前向单位向量
func YawForward(yawDegrees float64) Vec3 {
	return Vec3{X: 1}.RotateYaw(yawDegrees)
}

// InterpTo 以恒定速率系数让 current 向 target 收敛
//
// 每帧移动剩余距离的 clamp(deltaTime*speed, 0, 1) 倍；speed <= 0 时直接返回 target。
func InterpTo(current, target, deltaTime, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < 1e-8 {
		return target
	}
	alpha := Clamp(deltaTime*speed, 0, 1)
	return current + dist*alpha
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
