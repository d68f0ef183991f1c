package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有函数接受进度 t ∈ [0, 1]，返回缓动后的值。
// 配置文件中的曲线可以用名字引用这里的函数，见 EasingByName。

// EasingFunc 缓动函数签名
type EasingFunc func(t float64) float64

// EaseLinear 线性缓动
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic 三次方缓出：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInOutCubic 三次方缓入缓出
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseOutQuad 二次方缓出
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseOutBack 回弹缓出：先越过 1 再回落，适合拾取物"抛起再落下"
func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

var easingByName = map[string]EasingFunc{
	"linear":         EaseLinear,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
	"easeOutQuad":    EaseOutQuad,
	"easeOutBack":    EaseOutBack,
}

// EasingByName 按名字查找缓动函数
func EasingByName(name string) (EasingFunc, bool) {
	fn, ok := easingByName[name]
	return fn, ok
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
