package game

import (
	"sort"

	"github.com/decker502/shooter/pkg/ecs"
)

// TimerPurpose 计时器用途，同一实体同一用途最多一个计时器
type TimerPurpose string

const (
	TimerAutoFire      TimerPurpose = "auto_fire"
	TimerReload        TimerPurpose = "reload"
	TimerEquip         TimerPurpose = "equip"
	TimerStun          TimerPurpose = "stun"
	TimerCrosshairShot TimerPurpose = "crosshair_shot"
	TimerPickupSound   TimerPurpose = "pickup_sound"
	TimerEquipSound    TimerPurpose = "equip_sound"
	TimerItemInterp    TimerPurpose = "item_interp"
	TimerAttackWait    TimerPurpose = "attack_wait"
	TimerHitReact      TimerPurpose = "hit_react"
	TimerHealthBar     TimerPurpose = "health_bar"
	TimerDeath         TimerPurpose = "death"
	TimerFalling       TimerPurpose = "falling"
)

// TimerHandle 计时器句柄：(实体, 用途)
type TimerHandle struct {
	Owner   ecs.EntityID
	Purpose TimerPurpose
}

// Scheduler 一次性延迟回调的调度器
type Scheduler interface {
	// SetTimer 启动计时器；同一句柄已有计时器时会被替换
	SetTimer(h TimerHandle, duration float64, callback func())
	ClearTimer(h TimerHandle)
	// Elapsed 返回计时器已运行时间；计时器不存在时 ok 为 false
	Elapsed(h TimerHandle) (elapsed float64, ok bool)
	IsActive(h TimerHandle) bool
}

type scheduledTimer struct {
	duration float64
	elapsed  float64
	callback func()
	seq      uint64
}

// TimerManager 基于 tick 的 Scheduler 实现
//
// Update 推进所有计时器并按启动顺序触发到期的回调。回调中新启动的计时器从下一次 Update 开始计时。
type TimerManager struct {
	timers  map[TimerHandle]*scheduledTimer
	nextSeq uint64
}

// NewTimerManager 创建计时器管理器
func NewTimerManager() *TimerManager {
	return &TimerManager{timers: make(map[TimerHandle]*scheduledTimer)}
}

// SetTimer 启动或替换计时器
func (tm *TimerManager) SetTimer(h TimerHandle, duration float64, callback func()) {
	if duration < 0 {
		duration = 0
	}
	tm.nextSeq++
	tm.timers[h] = &scheduledTimer{
		duration: duration,
		callback: callback,
		seq:      tm.nextSeq,
	}
}

// ClearTimer 取消计时器，不触发回调
func (tm *TimerManager) ClearTimer(h TimerHandle) {
	delete(tm.timers, h)
}

// ClearOwner 取消某实体的全部计时器
func (tm *TimerManager) ClearOwner(owner ecs.EntityID) {
	for h := range tm.timers {
		if h.Owner == owner {
			delete(tm.timers, h)
		}
	}
}

// Elapsed 返回计时器已运行时间
func (tm *TimerManager) Elapsed(h TimerHandle) (float64, bool) {
	t, ok := tm.timers[h]
	if !ok {
		return 0, false
	}
	return t.elapsed, true
}

// IsActive 计时器是否仍在运行
func (tm *TimerManager) IsActive(h TimerHandle) bool {
	_, ok := tm.timers[h]
	return ok
}

// ActiveCount 当前运行中的计时器数量
func (tm *TimerManager) ActiveCount() int {
	return len(tm.timers)
}

// Update 推进所有计时器 deltaTime 秒并触发到期回调
func (tm *TimerManager) Update(deltaTime float64) {
	type due struct {
		handle TimerHandle
		timer  *scheduledTimer
	}
	var fired []due

	for h, t := range tm.timers {
		t.elapsed += deltaTime
		if t.elapsed >= t.duration {
			fired = append(fired, due{handle: h, timer: t})
		}
	}
	sort.Slice(fired, func(i, j int) bool { return fired[i].timer.seq < fired[j].timer.seq })

	for _, d := range fired {
		// 前面的回调可能已经取消或替换了这个计时器
		if current, ok := tm.timers[d.handle]; !ok || current != d.timer {
			continue
		}
		delete(tm.timers, d.handle)
		if d.timer.callback != nil {
			d.timer.callback()
		}
	}
}
