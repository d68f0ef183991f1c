// Package metrics 战斗事件计数器(OpenTelemetry)
//
// 未配置 MeterProvider 时 otel 返回空实现，计数调用为空操作。
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/decker502/shooter/pkg/metrics"

// CombatMetrics 战斗相关计数器
type CombatMetrics struct {
	shots   metric.Int64Counter
	reloads metric.Int64Counter
	stuns   metric.Int64Counter
	kills   metric.Int64Counter
	damage  metric.Float64Counter
	pickups metric.Int64Counter
}

// New 使用全局 MeterProvider 创建计数器
func New() (*CombatMetrics, error) {
	return NewWithMeter(otel.Meter(instrumentationName))
}

// NewWithMeter 使用指定 Meter 创建计数器
func NewWithMeter(m metric.Meter) (*CombatMetrics, error) {
	var (
		cm  CombatMetrics
		err error
	)

	if cm.shots, err = m.Int64Counter("combat.shots",
		metric.WithDescription("Total shots fired")); err != nil {
		return nil, fmt.Errorf("failed to create shots counter: %w", err)
	}
	if cm.reloads, err = m.Int64Counter("combat.reloads",
		metric.WithDescription("Total completed reloads")); err != nil {
		return nil, fmt.Errorf("failed to create reloads counter: %w", err)
	}
	if cm.stuns, err = m.Int64Counter("combat.stuns",
		metric.WithDescription("Total stun reactions triggered")); err != nil {
		return nil, fmt.Errorf("failed to create stuns counter: %w", err)
	}
	if cm.kills, err = m.Int64Counter("combat.kills",
		metric.WithDescription("Total actors killed")); err != nil {
		return nil, fmt.Errorf("failed to create kills counter: %w", err)
	}
	if cm.damage, err = m.Float64Counter("combat.damage",
		metric.WithDescription("Total damage applied")); err != nil {
		return nil, fmt.Errorf("failed to create damage counter: %w", err)
	}
	if cm.pickups, err = m.Int64Counter("combat.pickups",
		metric.WithDescription("Total items handed to an inventory")); err != nil {
		return nil, fmt.Errorf("failed to create pickups counter: %w", err)
	}
	return &cm, nil
}

// 以下方法在 nil 接收者上为空操作，调用方不用判空

// ShotFired 记录一次射击
func (cm *CombatMetrics) ShotFired(weapon string) {
	if cm == nil {
		return
	}
	cm.shots.Add(context.Background(), 1, metric.WithAttributes(attribute.String("weapon", weapon)))
}

// ReloadCompleted 记录一次换弹
func (cm *CombatMetrics) ReloadCompleted(ammoType string) {
	if cm == nil {
		return
	}
	cm.reloads.Add(context.Background(), 1, metric.WithAttributes(attribute.String("ammo_type", ammoType)))
}

// Stunned 记录一次硬直
func (cm *CombatMetrics) Stunned(actorKind string) {
	if cm == nil {
		return
	}
	cm.stuns.Add(context.Background(), 1, metric.WithAttributes(attribute.String("actor", actorKind)))
}

// Killed 记录一次击杀
func (cm *CombatMetrics) Killed(actorKind string) {
	if cm == nil {
		return
	}
	cm.kills.Add(context.Background(), 1, metric.WithAttributes(attribute.String("actor", actorKind)))
}

// DamageApplied 记录伤害量
func (cm *CombatMetrics) DamageApplied(actorKind string, amount float64) {
	if cm == nil || amount <= 0 {
		return
	}
	cm.damage.Add(context.Background(), amount, metric.WithAttributes(attribute.String("actor", actorKind)))
}

// ItemPickedUp 记录一次拾取
func (cm *CombatMetrics) ItemPickedUp(itemKind string) {
	if cm == nil {
		return
	}
	cm.pickups.Add(context.Background(), 1, metric.WithAttributes(attribute.String("item", itemKind)))
}
