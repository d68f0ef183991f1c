package app

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/metrics"
	"github.com/decker502/shooter/pkg/sandbox"
	"github.com/decker502/shooter/pkg/storage"
	"github.com/decker502/shooter/pkg/systems"
	"github.com/decker502/shooter/pkg/utils"
)

// 保留的 HUD 消息条数
const maxMessages = 6

// 场景中的初始物品
var arenaPickups = []struct {
	weapon string
	ammo   string
	at     utils.Vec3
}{
	{weapon: "rifle", at: utils.Vec3{X: 400, Y: 200}},
	{weapon: "pistol", at: utils.Vec3{X: 400, Y: -200}},
	{ammo: "9mm", at: utils.Vec3{X: -300, Y: 150}},
	{ammo: "AR", at: utils.Vec3{X: -300, Y: -150}},
}

// Session 一局游戏：战斗模拟、沙盒世界以及持久化
// 桌面端的 App 和无窗口的验证程序共用
type Session struct {
	Runtime *config.RuntimeConfig
	Combat  *config.CombatConfig

	Sim     *systems.Simulation
	Arena   *sandbox.Arena
	Feed    *sandbox.Feed
	Decider *sandbox.ChaseDecider
	Player  ecs.EntityID

	Ledger   *storage.KillLedger
	Loadouts *game.LoadoutStore

	messages []string
	logger   zerolog.Logger
}

// NewSession 创建一局游戏
// loadouts 可以为 nil；有存档时恢复玩家装备，恢复失败只记录警告
func NewSession(rc *config.RuntimeConfig, loadouts *game.LoadoutStore, logger zerolog.Logger) (*Session, error) {
	if rc == nil {
		return nil, fmt.Errorf("runtime config is nil")
	}
	cfg, err := config.LoadCombatConfig(rc.CombatConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load combat config: %w", err)
	}

	var cm *metrics.CombatMetrics
	if rc.MetricsEnabled {
		if cm, err = metrics.New(); err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	sessionID := strconv.FormatInt(time.Now().UnixNano(), 36)
	ledger, err := storage.OpenKillLedger(rc.KillLedgerPath, sessionID, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open kill ledger: %w", err)
	}

	arena := sandbox.NewArena(sandbox.DefaultArenaConfig(), logger)
	feed := sandbox.NewFeed(8, logger)
	decider := sandbox.NewChaseDecider(sandbox.DefaultChaseConfig(), logger)

	sim := systems.NewSimulation(cfg, rand.New(rand.NewSource(rc.Seed)), systems.Collaborators{
		World:    arena,
		Anim:     feed,
		Effects:  feed,
		Notifier: ledger,
		Decider:  decider,
		Metrics:  cm,
	}, logger)
	ledger.SetKindResolver(func(id ecs.EntityID) string {
		switch {
		case ecs.HasComponent[*components.PlayerComponent](sim.EntityManager, id):
			return "player"
		case ecs.HasComponent[*components.EnemyComponent](sim.EntityManager, id):
			return "enemy"
		}
		return "unknown"
	})

	player, err := sim.SpawnPlayer(utils.Vec3{})
	if err != nil {
		ledger.Close()
		return nil, err
	}
	arena.Attach(sim, player)
	decider.Attach(sim.EntityManager)

	s := &Session{
		Runtime:  rc,
		Combat:   cfg,
		Sim:      sim,
		Arena:    arena,
		Feed:     feed,
		Decider:  decider,
		Player:   player,
		Ledger:   ledger,
		Loadouts: loadouts,
		logger:   logging.ForSystem(logger, "Session"),
	}
	s.restoreLoadout()

	if err := s.populate(rc.EnemyCount); err != nil {
		ledger.Close()
		return nil, err
	}
	s.logger.Info().Str("session", sessionID).Int("enemies", rc.EnemyCount).Msg("Session started")
	return s, nil
}

// populate 在玩家周围一圈放置敌人，并摆放初始物品
func (s *Session) populate(enemyCount int) error {
	for i := 0; i < enemyCount; i++ {
		angle := 360 * float64(i) / float64(enemyCount)
		at := utils.YawForward(angle).Scale(1200)
		if _, err := s.Sim.SpawnEnemy("grunt", at, math.Mod(angle+180, 360)); err != nil {
			return err
		}
	}
	for _, p := range arenaPickups {
		var err error
		if p.weapon != "" {
			_, err = s.Sim.SpawnWeapon(p.weapon, p.at)
		} else {
			_, err = s.Sim.SpawnAmmo(p.ammo, p.at)
		}
		if err != nil {
			return fmt.Errorf("failed to place pickup: %w", err)
		}
	}
	return nil
}

func (s *Session) restoreLoadout() {
	if s.Loadouts == nil {
		return
	}
	loadout, err := s.Loadouts.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load saved loadout, using defaults")
		return
	}
	if loadout == nil {
		return
	}
	if err := s.Sim.RestoreLoadout(s.Player, loadout); err != nil {
		s.logger.Warn().Err(err).Msg("Saved loadout rejected, using defaults")
	}
}

// SaveLoadout 保存玩家当前装备
func (s *Session) SaveLoadout() error {
	if s.Loadouts == nil {
		return nil
	}
	loadout, err := s.Sim.CaptureLoadout(s.Player)
	if err != nil {
		return fmt.Errorf("failed to capture loadout: %w", err)
	}
	return s.Loadouts.Save(loadout)
}

// Update 推进一个 tick，并把出站事件转成 HUD 消息
func (s *Session) Update(deltaTime float64) {
	s.Sim.Update(deltaTime)
	s.Decider.Prune()

	for _, e := range s.Sim.Events.Drain() {
		switch ev := e.(type) {
		case game.HitMarkerEvent:
			msg := fmt.Sprintf("hit #%d for %.0f", ev.Target, ev.Damage)
			if ev.Headshot {
				msg += " (headshot)"
			}
			s.pushMessage(msg)
		case game.DeathEvent:
			s.pushMessage(fmt.Sprintf("#%d killed by #%d", ev.Victim, ev.Instigator))
		case game.EquipSlotChangedEvent:
			s.pushMessage(fmt.Sprintf("equip slot %d -> %d", ev.FromSlot, ev.ToSlot))
		}
	}
}

// Messages 最近的 HUD 消息，旧的在前
func (s *Session) Messages() []string {
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) pushMessage(msg string) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

// EnemiesAlive 存活的敌人数量
func (s *Session) EnemiesAlive() int {
	n := 0
	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.HealthComponent](s.Sim.EntityManager) {
		if h, _ := ecs.GetComponent[*components.HealthComponent](s.Sim.EntityManager, id); !h.Dead {
			n++
		}
	}
	return n
}

// Close 保存装备并关闭击杀记录库
func (s *Session) Close() error {
	if err := s.SaveLoadout(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save loadout")
	}
	return s.Ledger.Close()
}
