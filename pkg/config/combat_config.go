package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/embedded"
	"github.com/decker502/shooter/pkg/utils"
	"gopkg.in/yaml.v3"
)

// DefaultCombatConfigPath 内嵌的默认战斗配置
const DefaultCombatConfigPath = "data/combat.yaml"

// MontageNames 动画名
type MontageNames struct {
	HipFire  string `yaml:"hipFire"`
	Reload   string `yaml:"reload"`
	Equip    string `yaml:"equip"`
	HitReact string `yaml:"hitReact"`
	Death    string `yaml:"death"`
	Attack   string `yaml:"attack"`
}

// PlayerConfig 玩家角色参数
type PlayerConfig struct {
	MaxHealth         float64        `yaml:"maxHealth"`
	StunChance        float64        `yaml:"stunChance"`
	StartingAmmo      map[string]int `yaml:"startingAmmo"` // 弹药类型 -> 初始备弹
	InventoryCapacity int            `yaml:"inventoryCapacity"`
	DefaultWeapon     string         `yaml:"defaultWeapon"`

	HipLookRate float64 `yaml:"hipLookRate"`
	AimLookRate float64 `yaml:"aimLookRate"`

	EquipDuration        float64 `yaml:"equipDuration"`
	StunDuration         float64 `yaml:"stunDuration"`
	ShootWindow          float64 `yaml:"shootWindow"`
	PickupSoundResetTime float64 `yaml:"pickupSoundResetTime"`
	EquipSoundResetTime  float64 `yaml:"equipSoundResetTime"`
	PickupRange          float64 `yaml:"pickupRange"`

	HitParticles     string       `yaml:"hitParticles"`
	MeleeImpactSound string       `yaml:"meleeImpactSound"`
	Montages         MontageNames `yaml:"montages"`

	// 插值锚点偏移，下标 0 为武器锚点
	Anchors []utils.Vec3 `yaml:"anchors"`
}

// WeaponConfig 武器模板
type WeaponConfig struct {
	AmmoType       string  `yaml:"ammoType"`
	Capacity       int     `yaml:"capacity"`
	StartMagazine  int     `yaml:"startMagazine"`
	Automatic      bool    `yaml:"automatic"`
	FireInterval   float64 `yaml:"fireInterval"`
	Damage         float64 `yaml:"damage"`
	HeadshotDamage float64 `yaml:"headshotDamage"`
	Range          float64 `yaml:"range"`
	ReloadSection  string  `yaml:"reloadSection"`
	ReloadDuration float64 `yaml:"reloadDuration"`
	Rarity         string  `yaml:"rarity"`

	FireSound    string `yaml:"fireSound"`
	MuzzleFlash  string `yaml:"muzzleFlash"`
	MuzzleSocket string `yaml:"muzzleSocket"`
	BeamParticle string `yaml:"beamParticle"`
	PickupSound  string `yaml:"pickupSound"`
	EquipSound   string `yaml:"equipSound"`
}

// AmmoPickupConfig 弹药箱模板
type AmmoPickupConfig struct {
	Amount      int    `yaml:"amount"`
	PickupSound string `yaml:"pickupSound"`
	EquipSound  string `yaml:"equipSound"`
}

// EnemyConfig 敌人模板
type EnemyConfig struct {
	MaxHealth            float64 `yaml:"maxHealth"`
	StunChance           float64 `yaml:"stunChance"`
	BaseDamage           float64 `yaml:"baseDamage"`
	HeadBone             string  `yaml:"headBone"`
	AttackWaitTime       float64 `yaml:"attackWaitTime"`
	HitReactTimeMin      float64 `yaml:"hitReactTimeMin"`
	HitReactTimeMax      float64 `yaml:"hitReactTimeMax"`
	HitReactSection      string  `yaml:"hitReactSection"`
	StunDuration         float64 `yaml:"stunDuration"`
	HealthBarDisplayTime float64 `yaml:"healthBarDisplayTime"`
	HitLabelLifetime     float64 `yaml:"hitLabelLifetime"`
	DeathTime            float64 `yaml:"deathTime"`

	LeftWeaponSocket  string       `yaml:"leftWeaponSocket"`
	RightWeaponSocket string       `yaml:"rightWeaponSocket"`
	Montages          MontageNames `yaml:"montages"`
	ImpactSound       string       `yaml:"impactSound"`
	ImpactParticles   string       `yaml:"impactParticles"`

	PatrolPoint  utils.Vec3 `yaml:"patrolPoint"`
	PatrolPoint2 utils.Vec3 `yaml:"patrolPoint2"`
}

// InterpConfig 物品拾取插值参数
type InterpConfig struct {
	Duration        float64      `yaml:"duration"`
	HorizontalSpeed float64      `yaml:"horizontalSpeed"`
	ZCurve          utils.Curve  `yaml:"zCurve"`
	ScaleCurve      *utils.Curve `yaml:"scaleCurve,omitempty"`
	PulseCurve      *utils.Curve `yaml:"pulseCurve,omitempty"`
}

// CombatConfig 战斗配置文件结构
type CombatConfig struct {
	Player         PlayerConfig                `yaml:"player"`
	Weapons        map[string]WeaponConfig     `yaml:"weapons"`
	Ammo           map[string]AmmoPickupConfig `yaml:"ammo"`
	Enemies        map[string]EnemyConfig      `yaml:"enemies"`
	Interp         InterpConfig                `yaml:"interp"`
	AttackSections []string                    `yaml:"attackSections"`
}

// LoadCombatConfig 加载战斗配置
// 路径以 "data/" 开头且内嵌资源已初始化时从内嵌资源读取，否则读磁盘文件
func LoadCombatConfig(path string) (*CombatConfig, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(path, "data/") && embedded.IsInitialized() {
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read combat config file %s: %w", path, err)
	}

	cfg, err := ParseCombatConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid combat config in %s: %w", path, err)
	}
	return cfg, nil
}

// ParseCombatConfig 解析并校验 YAML 格式的战斗配置
func ParseCombatConfig(data []byte) (*CombatConfig, error) {
	var cfg CombatConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse combat YAML: %w", err)
	}
	applyCombatDefaults(&cfg)
	if err := validateCombatConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyCombatDefaults 为未填写的字段补默认值
func applyCombatDefaults(cfg *CombatConfig) {
	p := &cfg.Player
	if p.InventoryCapacity == 0 {
		p.InventoryCapacity = 6
	}
	if p.PickupSoundResetTime == 0 {
		p.PickupSoundResetTime = 0.2
	}
	if p.EquipSoundResetTime == 0 {
		p.EquipSoundResetTime = 0.2
	}
	if p.ShootWindow == 0 {
		p.ShootWindow = 0.05
	}
	if cfg.Interp.Duration == 0 {
		cfg.Interp.Duration = 0.7
	}
	if cfg.Interp.HorizontalSpeed == 0 {
		cfg.Interp.HorizontalSpeed = 30
	}
	for name, e := range cfg.Enemies {
		if e.HitLabelLifetime == 0 {
			e.HitLabelLifetime = 1.0
		}
		if e.HealthBarDisplayTime == 0 {
			e.HealthBarDisplayTime = 3
		}
		cfg.Enemies[name] = e
	}
}

// validateCombatConfig 验证战斗配置的完整性和合法性
func validateCombatConfig(cfg *CombatConfig) error {
	p := cfg.Player
	if p.MaxHealth <= 0 {
		return fmt.Errorf("player: maxHealth must be positive, got %v", p.MaxHealth)
	}
	if p.StunChance < 0 || p.StunChance > 1 {
		return fmt.Errorf("player: stunChance must be within [0, 1], got %v", p.StunChance)
	}
	for ammoType, n := range p.StartingAmmo {
		if n < 0 {
			return fmt.Errorf("player: startingAmmo %s cannot be negative, got %d", ammoType, n)
		}
	}
	if len(p.Anchors) < 2 {
		return fmt.Errorf("player: at least 2 interp anchors are required (weapon + item), got %d", len(p.Anchors))
	}
	if p.EquipDuration < 0 || p.StunDuration < 0 {
		return fmt.Errorf("player: durations cannot be negative")
	}

	if len(cfg.Weapons) == 0 {
		return fmt.Errorf("at least one weapon is required")
	}
	if _, ok := cfg.Weapons[p.DefaultWeapon]; p.DefaultWeapon != "" && !ok {
		return fmt.Errorf("player: default weapon %s is not defined", p.DefaultWeapon)
	}
	for name, w := range cfg.Weapons {
		if w.AmmoType == "" {
			return fmt.Errorf("weapon %s: ammoType is required", name)
		}
		if w.Capacity <= 0 {
			return fmt.Errorf("weapon %s: capacity must be positive, got %d", name, w.Capacity)
		}
		if w.StartMagazine < 0 || w.StartMagazine > w.Capacity {
			return fmt.Errorf("weapon %s: startMagazine must be within [0, %d], got %d", name, w.Capacity, w.StartMagazine)
		}
		if w.FireInterval <= 0 {
			return fmt.Errorf("weapon %s: fireInterval must be positive, got %v", name, w.FireInterval)
		}
		if w.ReloadDuration < 0 {
			return fmt.Errorf("weapon %s: reloadDuration cannot be negative, got %v", name, w.ReloadDuration)
		}
		if w.Rarity != "" {
			if _, ok := components.ParseRarity(w.Rarity); !ok {
				return fmt.Errorf("weapon %s: unknown rarity %q", name, w.Rarity)
			}
		}
	}

	for name, a := range cfg.Ammo {
		if a.Amount <= 0 {
			return fmt.Errorf("ammo %s: amount must be positive, got %d", name, a.Amount)
		}
	}

	for name, e := range cfg.Enemies {
		if e.MaxHealth <= 0 {
			return fmt.Errorf("enemy %s: maxHealth must be positive, got %v", name, e.MaxHealth)
		}
		if e.StunChance < 0 || e.StunChance > 1 {
			return fmt.Errorf("enemy %s: stunChance must be within [0, 1], got %v", name, e.StunChance)
		}
		if e.HitReactTimeMin < 0 || e.HitReactTimeMax < e.HitReactTimeMin {
			return fmt.Errorf("enemy %s: invalid hit react range [%v, %v]", name, e.HitReactTimeMin, e.HitReactTimeMax)
		}
	}

	if cfg.Interp.ZCurve.IsZero() {
		return fmt.Errorf("interp: zCurve is required")
	}
	if !cfg.Interp.ZCurve.SortedKeys() {
		return fmt.Errorf("interp: zCurve keys must have strictly increasing time")
	}
	if cfg.Interp.Duration <= 0 {
		return fmt.Errorf("interp: duration must be positive, got %v", cfg.Interp.Duration)
	}

	if len(cfg.AttackSections) == 0 && len(cfg.Enemies) > 0 {
		return fmt.Errorf("attackSections are required when enemies are defined")
	}

	return nil
}

// GetWeapon 获取武器模板
func (c *CombatConfig) GetWeapon(name string) (*WeaponConfig, bool) {
	w, ok := c.Weapons[name]
	if !ok {
		return nil, false
	}
	return &w, true
}

// GetEnemy 获取敌人模板
func (c *CombatConfig) GetEnemy(name string) (*EnemyConfig, bool) {
	e, ok := c.Enemies[name]
	if !ok {
		return nil, false
	}
	return &e, true
}
