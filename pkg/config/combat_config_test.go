package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/decker502/shooter/pkg/embedded"
)

const minimalCombatYAML = `
player:
  maxHealth: 100
  stunChance: 0.25
  startingAmmo: {9mm: 85}
  defaultWeapon: smg
  anchors:
    - {x: 250, y: 0, z: 0}
    - {x: 200, y: -60, z: -30}
weapons:
  smg:
    ammoType: 9mm
    capacity: 30
    fireInterval: 0.1
interp:
  zCurve:
    keys:
      - {time: 0, value: 0}
      - {time: 0.7, value: 1}
`

func TestLoadCombatConfig_Bundled(t *testing.T) {
	cfg, err := LoadCombatConfig(filepath.Join("..", "..", "data", "combat.yaml"))
	if err != nil {
		t.Fatalf("LoadCombatConfig failed: %v", err)
	}

	if cfg.Player.StartingAmmo["9mm"] != 85 || cfg.Player.StartingAmmo["AR"] != 120 {
		t.Errorf("starting ammo = %v, want 9mm:85 AR:120", cfg.Player.StartingAmmo)
	}
	if cfg.Player.InventoryCapacity != 6 {
		t.Errorf("inventory capacity = %d, want 6", cfg.Player.InventoryCapacity)
	}
	if len(cfg.Player.Anchors) != 7 {
		t.Errorf("expected 7 anchors, got %d", len(cfg.Player.Anchors))
	}
	if len(cfg.AttackSections) != 7 {
		t.Errorf("expected 7 attack sections, got %d", len(cfg.AttackSections))
	}
	grunt, ok := cfg.GetEnemy("grunt")
	if !ok {
		t.Fatal("grunt enemy should be defined")
	}
	if grunt.HitReactTimeMin != 0.4 || grunt.HitReactTimeMax != 3 || grunt.DeathTime != 5 {
		t.Errorf("unexpected grunt timings %+v", grunt)
	}
	if cfg.Interp.Duration != 0.7 {
		t.Errorf("interp duration = %v, want 0.7", cfg.Interp.Duration)
	}
}

func TestParseCombatConfig_Defaults(t *testing.T) {
	cfg, err := ParseCombatConfig([]byte(minimalCombatYAML))
	if err != nil {
		t.Fatalf("ParseCombatConfig failed: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"inventoryCapacity", float64(cfg.Player.InventoryCapacity), 6},
		{"pickupSoundResetTime", cfg.Player.PickupSoundResetTime, 0.2},
		{"equipSoundResetTime", cfg.Player.EquipSoundResetTime, 0.2},
		{"interp.duration", cfg.Interp.Duration, 0.7},
		{"interp.horizontalSpeed", cfg.Interp.HorizontalSpeed, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestParseCombatConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{"负数备弹", [2]string{"{9mm: 85}", "{9mm: -1}"}, "cannot be negative"},
		{"硬直概率越界", [2]string{"stunChance: 0.25", "stunChance: 1.5"}, "stunChance"},
		{"弹匣容量为0", [2]string{"capacity: 30", "capacity: 0"}, "capacity must be positive"},
		{"默认武器不存在", [2]string{"defaultWeapon: smg", "defaultWeapon: bazooka"}, "default weapon"},
		{"射速为0", [2]string{"fireInterval: 0.1", "fireInterval: 0"}, "fireInterval"},
		{"曲线关键帧乱序", [2]string{"{time: 0.7, value: 1}", "{time: 0, value: 1}"}, "strictly increasing"},
		{"只有武器锚点", [2]string{"    - {x: 200, y: -60, z: -30}\n", ""}, "at least 2 interp anchors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(minimalCombatYAML, tt.replace[0], tt.replace[1], 1)
			_, err := ParseCombatConfig([]byte(data))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadCombatConfig_MissingFile(t *testing.T) {
	_, err := LoadCombatConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadCombatConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("player: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if _, err := LoadCombatConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadCombatConfig_Embedded(t *testing.T) {
	embedded.Init(fstest.MapFS{
		"data/combat.yaml": {Data: []byte(minimalCombatYAML)},
	})
	defer embedded.Reset()

	cfg, err := LoadCombatConfig("data/combat.yaml")
	if err != nil {
		t.Fatalf("LoadCombatConfig failed: %v", err)
	}
	if _, ok := cfg.GetWeapon("smg"); !ok {
		t.Error("smg should come from the embedded file")
	}
	if _, ok := cfg.GetWeapon("rifle"); ok {
		t.Error("rifle is only defined on disk")
	}
}
