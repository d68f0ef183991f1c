package components

// AmmoType 弹药类型标签
type AmmoType string

const (
	Ammo9mm AmmoType = "9mm"
	AmmoAR  AmmoType = "AR"
)

// WeaponComponent 武器实例数据
// 武器同时是一个物品实体(带 ItemComponent)，弹匣计数只属于武器本身
type WeaponComponent struct {
	Name           string
	AmmoType       AmmoType
	Magazine       int     // 当前弹匣子弹数
	Capacity       int     // 弹匣容量
	Automatic      bool    // 按住开火键是否连发
	FireInterval   float64 // 两次射击的最小间隔(秒)
	Damage         float64 // 身体伤害
	HeadshotDamage float64 // 爆头伤害
	Range          float64 // 射线检测距离

	ReloadSection  string  // 换弹动画片段名
	ReloadDuration float64 // 换弹动画时长(秒)

	FireSound    string
	MuzzleFlash  string
	MuzzleSocket string
	BeamParticle string
}

// HasAmmo 弹匣是否有子弹
func (w *WeaponComponent) HasAmmo() bool {
	return w.Magazine > 0
}

// IsFull 弹匣是否已满
func (w *WeaponComponent) IsFull() bool {
	return w.Magazine >= w.Capacity
}

// EmptySpace 弹匣剩余空间
func (w *WeaponComponent) EmptySpace() int {
	if w.Magazine >= w.Capacity {
		return 0
	}
	return w.Capacity - w.Magazine
}

// DecrementAmmo 消耗一发子弹，弹匣为空时返回 false
func (w *WeaponComponent) DecrementAmmo() bool {
	if w.Magazine <= 0 {
		w.Magazine = 0
		return false
	}
	w.Magazine--
	return true
}

// Load 装填 amount 发，超出空间的部分不装载；返回实际装填数
func (w *WeaponComponent) Load(amount int) int {
	if amount <= 0 {
		return 0
	}
	space := w.EmptySpace()
	if amount > space {
		amount = space
	}
	w.Magazine += amount
	return amount
}
