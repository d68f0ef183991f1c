package components

// LifetimeComponent 固定寿命，到期后由系统销毁实体(如伤害数字)
type LifetimeComponent struct {
	MaxLifetime     float64 // 最大生命周期(秒)
	CurrentLifetime float64 // 当前已存在时间(秒)
	IsExpired       bool    // 是否已过期
}
