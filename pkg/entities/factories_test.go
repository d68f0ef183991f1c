package entities

import (
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

func loadConfig(t *testing.T) *config.CombatConfig {
	t.Helper()
	cfg, err := config.LoadCombatConfig("../../data/combat.yaml")
	if err != nil {
		t.Fatalf("failed to load combat config: %v", err)
	}
	return cfg
}

// TestNewPlayer 测试玩家实体创建
func TestNewPlayer(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadConfig(t)

	id, err := NewPlayer(em, cfg, utils.Vec3{X: 10})
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}

	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok || health.Current != cfg.Player.MaxHealth || health.StunChance != cfg.Player.StunChance {
		t.Errorf("unexpected health %+v", health)
	}
	ledger, ok := ecs.GetComponent[*components.AmmoLedgerComponent](em, id)
	if !ok || ledger.Reserve(components.Ammo9mm) != 85 || ledger.Reserve(components.AmmoAR) != 120 {
		t.Errorf("unexpected reserves %+v", ledger)
	}
	anchors, ok := ecs.GetComponent[*components.AnchorSetComponent](em, id)
	if !ok || len(anchors.Anchors) != len(cfg.Player.Anchors) {
		t.Errorf("expected %d anchors", len(cfg.Player.Anchors))
	}
	combat, ok := ecs.GetComponent[*components.CombatComponent](em, id)
	if !ok || combat.State != components.CombatStateUnoccupied || combat.EquippedWeapon != ecs.InvalidEntity {
		t.Errorf("unexpected combat %+v", combat)
	}
	inv, ok := ecs.GetComponent[*components.InventoryComponent](em, id)
	if !ok || inv.Capacity != 6 || inv.Len() != 0 {
		t.Errorf("unexpected inventory %+v", inv)
	}
}

func TestNewPlayer_NilConfig(t *testing.T) {
	if _, err := NewPlayer(ecs.NewEntityManager(), nil, utils.Vec3{}); err == nil {
		t.Error("expected an error for a nil config")
	}
}

func TestNewWeapon(t *testing.T) {
	cfg := loadConfig(t)

	tests := []struct {
		name    string
		weapon  string
		wantErr bool
	}{
		{"smg", "smg", false},
		{"rifle", "rifle", false},
		{"unknown", "railgun", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := ecs.NewEntityManager()
			id, err := NewWeapon(em, cfg, tt.weapon, utils.Vec3{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWeapon() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			w, _ := ecs.GetComponent[*components.WeaponComponent](em, id)
			tmpl := cfg.Weapons[tt.weapon]
			if w.Magazine != tmpl.StartMagazine || w.Capacity != tmpl.Capacity || string(w.AmmoType) != tmpl.AmmoType {
				t.Errorf("weapon does not match template: %+v", w)
			}
			item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
			if item.Type != components.ItemTypeWeapon || item.State != components.ItemStatePickupIdle || item.SlotIndex != -1 {
				t.Errorf("unexpected item %+v", item)
			}
			interp, _ := ecs.GetComponent[*components.ItemInterpComponent](em, id)
			if interp.Duration != cfg.Interp.Duration || interp.ZCurve.IsZero() {
				t.Errorf("unexpected interp %+v", interp)
			}
		})
	}
}

func TestNewWeapon_CurvesNotShared(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadConfig(t)
	a, _ := NewWeapon(em, cfg, "smg", utils.Vec3{})
	b, _ := NewWeapon(em, cfg, "smg", utils.Vec3{})

	ia, _ := ecs.GetComponent[*components.ItemInterpComponent](em, a)
	ib, _ := ecs.GetComponent[*components.ItemInterpComponent](em, b)
	ia.ZCurve.Keys[0].Value = 99

	if ib.ZCurve.Keys[0].Value == 99 || cfg.Interp.ZCurve.Keys[0].Value == 99 {
		t.Error("curve keys should be copied per item")
	}
}

func TestNewAmmoPickup(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadConfig(t)

	id, err := NewAmmoPickup(em, cfg, "AR", utils.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	ammo, _ := ecs.GetComponent[*components.AmmoPickupComponent](em, id)
	if ammo.AmmoType != components.AmmoAR || ammo.Amount != 24 {
		t.Errorf("unexpected ammo %+v", ammo)
	}
	if ecs.HasComponent[*components.WeaponComponent](em, id) {
		t.Error("ammo must not be a weapon")
	}

	if _, err := NewAmmoPickup(em, cfg, "rocket", utils.Vec3{}); err == nil {
		t.Error("expected an error for unknown ammo")
	}
}

// TestNewEnemy 巡逻点按出生点和朝向转换到世界坐标
func TestNewEnemy(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadConfig(t)

	id, err := NewEnemy(em, cfg, "grunt", utils.Vec3{X: 100, Y: 100}, 90)
	if err != nil {
		t.Fatal(err)
	}
	bb, ok := ecs.GetComponent[*components.BlackboardComponent](em, id)
	if !ok || !bb.CanAttack {
		t.Fatalf("unexpected blackboard %+v", bb)
	}
	// (600,0,0) 旋转 90 度后为 (0,600,0)
	if d := bb.PatrolPoint.Distance(utils.Vec3{X: 100, Y: 700}); d > 1e-6 {
		t.Errorf("unexpected patrol point %+v", bb.PatrolPoint)
	}
	enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
	if !enemy.CanAttack || !enemy.CanHitReact || enemy.SwingVictim == nil {
		t.Errorf("unexpected enemy %+v", enemy)
	}

	if _, err := NewEnemy(em, cfg, "boss", utils.Vec3{}, 0); err == nil {
		t.Error("expected an error for an unknown enemy")
	}
}
