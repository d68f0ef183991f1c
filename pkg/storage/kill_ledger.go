// Package storage 持久化击杀记录(SQLite，经 gorm)
package storage

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/decker502/shooter/pkg/ecs"
)

// KillRecord 一条击杀记录
type KillRecord struct {
	ID         uint      `gorm:"primaryKey"`
	Session    string    `gorm:"index"`
	Victim     uint64    `gorm:"not null"`
	VictimKind string    `gorm:"size:32"`
	Instigator uint64    // 0 表示无击杀者
	KilledAt   time.Time `gorm:"not null"`
}

// KindResolver 把实体 ID 映射为 "player" / "enemy" 等类别名
type KindResolver func(id ecs.EntityID) string

// KillLedger 击杀记录表，实现 game.KillNotifier
type KillLedger struct {
	db      *gorm.DB
	session string
	kindOf  KindResolver
	logger  zerolog.Logger
	now     func() time.Time
}

// OpenKillLedger 打开(必要时创建)击杀记录库
// path 为空时使用内存数据库
func OpenKillLedger(path, session string, log zerolog.Logger) (*KillLedger, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open kill ledger %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&KillRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kill ledger: %w", err)
	}

	l := &KillLedger{
		db:      db,
		session: session,
		logger:  log.With().Str("component", "KillLedger").Logger(),
		now:     time.Now,
	}
	if path == "" {
		l.logger.Info().Msg("Using in-memory kill ledger")
	} else {
		l.logger.Info().Str("path", path).Msg("Using SQLite kill ledger")
	}
	return l, nil
}

// SetKindResolver 设置实体类别解析
func (l *KillLedger) SetKindResolver(fn KindResolver) {
	l.kindOf = fn
}

// PawnKilled 记录一次击杀；写库失败只记日志，不影响游戏流程
func (l *KillLedger) PawnKilled(victim, instigator ecs.EntityID) {
	rec := KillRecord{
		Session:    l.session,
		Victim:     uint64(victim),
		Instigator: uint64(instigator),
		KilledAt:   l.now().UTC(),
	}
	if l.kindOf != nil {
		rec.VictimKind = l.kindOf(victim)
	}
	if err := l.db.Create(&rec).Error; err != nil {
		l.logger.Error().Err(err).Uint64("victim", rec.Victim).Msg("Failed to record kill")
		return
	}
	l.logger.Debug().Uint64("victim", rec.Victim).Uint64("instigator", rec.Instigator).Msg("Kill recorded")
}

// Count 当前会话的击杀数，kind 为空时统计全部类别
func (l *KillLedger) Count(kind string) (int64, error) {
	var n int64
	q := l.db.Model(&KillRecord{}).Where("session = ?", l.session)
	if kind != "" {
		q = q.Where("victim_kind = ?", kind)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count kills: %w", err)
	}
	return n, nil
}

// Recent 最近 limit 条记录，按时间倒序
func (l *KillLedger) Recent(limit int) ([]KillRecord, error) {
	var out []KillRecord
	if err := l.db.Where("session = ?", l.session).Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to query kills: %w", err)
	}
	return out, nil
}

// Close 关闭数据库连接
func (l *KillLedger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
