package components

import "github.com/decker502/shooter/pkg/ecs"

// DefaultInventoryCapacity 背包槽位上限
const DefaultInventoryCapacity = 6

// InventoryComponent 角色背包
//
// 不变量：同一物品不会出现在两个槽位；物品记录的 SlotIndex 与其实际位置一致。
type InventoryComponent struct {
	Slots           []ecs.EntityID // 有序槽位，InvalidEntity 表示空槽
	Capacity        int
	HighlightedSlot int // 正在闪烁提示的空槽，-1 表示无

	OverlappedItemCount int          // 与拾取范围重叠的物品数
	TracedItem          ecs.EntityID // 当前帧准星下的物品
	LastTracedItem      ecs.EntityID // 上一帧准星下的物品

	PickupSoundReady bool // 拾取音效去重窗口是否已过
	EquipSoundReady  bool // 装备音效去重窗口是否已过
}

// NewInventory 创建空背包
func NewInventory(capacity int) *InventoryComponent {
	if capacity <= 0 {
		capacity = DefaultInventoryCapacity
	}
	return &InventoryComponent{
		Slots:            make([]ecs.EntityID, 0, capacity),
		Capacity:         capacity,
		HighlightedSlot:  -1,
		PickupSoundReady: true,
		EquipSoundReady:  true,
	}
}

// Len 当前槽位数
func (inv *InventoryComponent) Len() int {
	return len(inv.Slots)
}

// ItemAt 返回槽位中的物品，越界或空槽返回 InvalidEntity
func (inv *InventoryComponent) ItemAt(slot int) ecs.EntityID {
	if slot < 0 || slot >= len(inv.Slots) {
		return ecs.InvalidEntity
	}
	return inv.Slots[slot]
}

// IndexOf 返回物品所在槽位，不在背包中返回 -1
func (inv *InventoryComponent) IndexOf(item ecs.EntityID) int {
	for i, id := range inv.Slots {
		if id == item && item != ecs.InvalidEntity {
			return i
		}
	}
	return -1
}

// EmptySlot 返回第一个空槽；没有空槽但未满时返回下一个追加位置；已满返回 -1
func (inv *InventoryComponent) EmptySlot() int {
	for i, id := range inv.Slots {
		if id == ecs.InvalidEntity {
			return i
		}
	}
	if len(inv.Slots) < inv.Capacity {
		return len(inv.Slots)
	}
	return -1
}
