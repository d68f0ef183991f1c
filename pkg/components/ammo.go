package components

// AmmoLedgerComponent 角色携带的备弹
// 不变量：任何类型的备弹数都不为负
type AmmoLedgerComponent struct {
	Reserves map[AmmoType]int
}

// NewAmmoLedger 创建备弹账本，负数初值按 0 处理
func NewAmmoLedger(initial map[AmmoType]int) *AmmoLedgerComponent {
	l := &AmmoLedgerComponent{Reserves: make(map[AmmoType]int, len(initial))}
	for t, n := range initial {
		l.Add(t, n)
	}
	return l
}

// Reserve 返回某类型的备弹数
func (l *AmmoLedgerComponent) Reserve(t AmmoType) int {
	return l.Reserves[t]
}

// Add 增加备弹，amount <= 0 时忽略
func (l *AmmoLedgerComponent) Add(t AmmoType, amount int) {
	if l.Reserves == nil {
		l.Reserves = make(map[AmmoType]int)
	}
	if amount <= 0 {
		if _, ok := l.Reserves[t]; !ok {
			l.Reserves[t] = 0
		}
		return
	}
	l.Reserves[t] += amount
}

// Withdraw 取出至多 amount 发，返回实际取出数
func (l *AmmoLedgerComponent) Withdraw(t AmmoType, amount int) int {
	have := l.Reserves[t]
	if amount <= 0 || have <= 0 {
		return 0
	}
	if amount > have {
		amount = have
	}
	l.Reserves[t] = have - amount
	return amount
}

// AmmoPickupComponent 地上的弹药箱
type AmmoPickupComponent struct {
	AmmoType AmmoType
	Amount   int
}
