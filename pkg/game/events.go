package game

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// Event 战斗核心发往 UI 的事件
type Event interface {
	isEvent()
}

// EquipSlotChangedEvent 装备槽位变化，FromSlot 为 -1 表示之前未装备
type EquipSlotChangedEvent struct {
	Owner    ecs.EntityID
	FromSlot int
	ToSlot   int
}

// HighlightIconEvent 背包图标开始/停止闪烁
type HighlightIconEvent struct {
	Owner ecs.EntityID
	Slot  int
	On    bool
}

// HealthBarEvent 敌人血条显示/隐藏
type HealthBarEvent struct {
	Enemy   ecs.EntityID
	Visible bool
}

// HitMarkerEvent 新的伤害飘字
type HitMarkerEvent struct {
	Label    ecs.EntityID
	Target   ecs.EntityID
	Damage   float64
	Location utils.Vec3
	Headshot bool
}

// DeathEvent 角色死亡
type DeathEvent struct {
	Victim     ecs.EntityID
	Instigator ecs.EntityID
}

func (EquipSlotChangedEvent) isEvent() {}
func (HighlightIconEvent) isEvent()    {}
func (HealthBarEvent) isEvent()        {}
func (HitMarkerEvent) isEvent()        {}
func (DeathEvent) isEvent()            {}

// EventQueue 出站事件队列，UI 每帧 Drain 一次
type EventQueue struct {
	events []Event
}

// NewEventQueue 创建事件队列
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]Event, 0, 16)}
}

// Push 追加事件；nil 队列上调用是空操作
func (q *EventQueue) Push(e Event) {
	if q == nil {
		return
	}
	q.events = append(q.events, e)
}

// Drain 取出并清空所有事件
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}

// Len 待处理事件数
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.events)
}
