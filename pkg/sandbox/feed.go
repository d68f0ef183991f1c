package sandbox

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/logging"
	"github.com/decker502/shooter/pkg/utils"
)

// Feed 把动画、音效、粒子请求写入日志，并保留最近几条供调试界面显示
// 实现 game.AnimationPlayer 和 game.Effects
type Feed struct {
	lines  []string
	max    int
	counts map[string]int
	logger zerolog.Logger
}

// NewFeed 创建表现层记录器，max 为保留的条数
func NewFeed(max int, logger zerolog.Logger) *Feed {
	if max <= 0 {
		max = 1
	}
	return &Feed{
		max:    max,
		counts: make(map[string]int),
		logger: logging.ForSystem(logger, "Feed"),
	}
}

// Play 记录动画请求
func (f *Feed) Play(actor ecs.EntityID, montage, section string) {
	f.logger.Debug().Uint64("actor", uint64(actor)).Str("montage", montage).Str("section", section).Msg("Play montage")
	if section != "" {
		f.push(montage, fmt.Sprintf("#%d %s/%s", actor, montage, section))
		return
	}
	f.push(montage, fmt.Sprintf("#%d %s", actor, montage))
}

// PlaySound 记录音效请求
func (f *Feed) PlaySound(name string, location utils.Vec3) {
	f.logger.Debug().Str("sound", name).Float64("x", location.X).Float64("y", location.Y).Msg("Play sound")
	f.push(name, "sound "+name)
}

// SpawnParticles 记录粒子请求
func (f *Feed) SpawnParticles(name string, location utils.Vec3) {
	f.logger.Debug().Str("particles", name).Float64("x", location.X).Float64("y", location.Y).Msg("Spawn particles")
	f.push(name, "fx "+name)
}

// Lines 返回最近的记录，旧的在前
func (f *Feed) Lines() []string {
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// Count 返回某个资源名被请求的次数
func (f *Feed) Count(name string) int {
	return f.counts[name]
}

func (f *Feed) push(name, line string) {
	f.counts[name]++
	f.lines = append(f.lines, line)
	if len(f.lines) > f.max {
		f.lines = f.lines[len(f.lines)-f.max:]
	}
}
