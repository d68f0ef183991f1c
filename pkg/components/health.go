package components

// HealthComponent 生命值
// Current 始终在 [0, Max]；降到 0 后 Dead 置位且不可逆
type HealthComponent struct {
	Current    float64
	Max        float64
	StunChance float64 // 受击硬直概率 [0, 1]
	Dead       bool
}

// NewHealth 创建满血的生命值组件
func NewHealth(max, stunChance float64) *HealthComponent {
	return &HealthComponent{Current: max, Max: max, StunChance: stunChance}
}
