package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Loadout 跨会话保存的玩家装备
type Loadout struct {
	Reserves     map[string]int `yaml:"reserves"`     // 弹药类型 -> 备弹数
	Weapons      []LoadoutSlot  `yaml:"weapons"`      // 按槽位顺序
	EquippedSlot int            `yaml:"equippedSlot"` // 装备中的槽位，-1 表示无
	Health       float64        `yaml:"health"`
}

// LoadoutSlot 一个背包槽位中的武器
type LoadoutSlot struct {
	Weapon   string `yaml:"weapon"` // 武器配置名，空串表示空槽
	Magazine int    `yaml:"magazine"`
	Rarity   string `yaml:"rarity,omitempty"`
}

const (
	loadoutObject   = "loadout"
	loadoutProperty = "player"
)

// LoadoutStore 装备存档
// gdataManager 为 nil 时进入降级模式：Load 总是返回未找到，Save 不做任何事
type LoadoutStore struct {
	gdataManager *gdata.Manager
	logger       zerolog.Logger
}

// NewLoadoutStore 创建装备存档
func NewLoadoutStore(gdataManager *gdata.Manager, logger zerolog.Logger) *LoadoutStore {
	return &LoadoutStore{
		gdataManager: gdataManager,
		logger:       logger.With().Str("component", "LoadoutStore").Logger(),
	}
}

// Exists 是否有已保存的装备
func (s *LoadoutStore) Exists() bool {
	if s.gdataManager == nil {
		return false
	}
	return s.gdataManager.ObjectPropExists(loadoutObject, loadoutProperty)
}

// Load 读取装备；没有存档时返回 (nil, nil)
func (s *LoadoutStore) Load() (*Loadout, error) {
	if !s.Exists() {
		return nil, nil
	}

	data, err := s.gdataManager.LoadObjectProp(loadoutObject, loadoutProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load loadout: %w", err)
	}

	var loadout Loadout
	if err := yaml.Unmarshal(data, &loadout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal loadout: %w", err)
	}
	if loadout.Reserves == nil {
		loadout.Reserves = make(map[string]int)
	}

	s.logger.Info().Int("weapons", len(loadout.Weapons)).Msg("Loadout loaded")
	return &loadout, nil
}

// Save 保存装备
func (s *LoadoutStore) Save(loadout *Loadout) error {
	if s.gdataManager == nil {
		return nil
	}
	if loadout == nil {
		return fmt.Errorf("loadout cannot be nil")
	}

	data, err := yaml.Marshal(loadout)
	if err != nil {
		return fmt.Errorf("failed to marshal loadout: %w", err)
	}

	if err := s.gdataManager.SaveObjectProp(loadoutObject, loadoutProperty, data); err != nil {
		return fmt.Errorf("failed to save loadout: %w", err)
	}

	s.logger.Info().Int("weapons", len(loadout.Weapons)).Msg("Loadout saved")
	return nil
}
