package utils

import "sort"

// CurveKey 曲线关键帧
type CurveKey struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Curve 以时间(秒)为输入的浮点曲线
//
// 两种写法二选一：
//   - Keys: 关键帧之间线性插值，超出首尾时取端点值
//   - Easing + Duration: 用命名缓动函数在 [0, Duration] 上求值
type Curve struct {
	Keys     []CurveKey `yaml:"keys,omitempty"`
	Easing   string     `yaml:"easing,omitempty"`
	Duration float64    `yaml:"duration,omitempty"`
}

// IsZero 曲线是否未配置
func (c *Curve) IsZero() bool {
	return c == nil || (len(c.Keys) == 0 && c.Easing == "")
}

// Eval 求曲线在时间 t 的值；未配置的曲线返回 0
func (c *Curve) Eval(t float64) float64 {
	if c.IsZero() {
		return 0
	}
	if c.Easing != "" {
		fn, ok := EasingByName(c.Easing)
		if !ok {
			fn = EaseLinear
		}
		if c.Duration <= 0 {
			return fn(1)
		}
		return fn(Clamp(t/c.Duration, 0, 1))
	}

	keys := c.Keys
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last.Value
	}
	// 找到第一个 Time > t 的关键帧
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	a, b := keys[i-1], keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Value
	}
	return Lerp(a.Value, b.Value, (t-a.Time)/span)
}

// SortedKeys 返回关键帧是否按时间严格递增
func (c *Curve) SortedKeys() bool {
	for i := 1; i < len(c.Keys); i++ {
		if c.Keys[i].Time <= c.Keys[i-1].Time {
			return false
		}
	}
	return true
}
