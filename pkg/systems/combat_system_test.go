package systems

import (
	"math"
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// TestRequestReload_TransfersAmmo 弹匣 0/30、备弹 85 换弹后为 30/55
func TestRequestReload_TransfersAmmo(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 0

	if got := r.ledger(t).Reserve(components.Ammo9mm); got != 85 {
		t.Fatalf("expected reserve 85, got %d", got)
	}

	r.sim.Combat.RequestReload(r.player)
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateReloading {
		t.Fatalf("expected Reloading, got %v", got)
	}
	if weapon.Magazine != 0 {
		t.Errorf("ammo must not move before the reload finishes, magazine=%d", weapon.Magazine)
	}
	if r.anim.played("ReloadMontage") != 1 {
		t.Error("reload montage should play once")
	}

	r.sim.Update(weapon.ReloadDuration)

	if weapon.Magazine != 30 {
		t.Errorf("expected magazine 30, got %d", weapon.Magazine)
	}
	if got := r.ledger(t).Reserve(components.Ammo9mm); got != 55 {
		t.Errorf("expected reserve 55, got %d", got)
	}
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
		t.Errorf("expected Unoccupied after reload, got %v", got)
	}
}

// TestReload_PartialReserve 备弹不足时只装入剩余的备弹
func TestReload_PartialReserve(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 10
	r.ledger(t).Reserves[components.Ammo9mm] = 5

	r.sim.Combat.RequestReload(r.player)
	r.sim.Update(weapon.ReloadDuration)

	if weapon.Magazine != 15 {
		t.Errorf("expected magazine 15, got %d", weapon.Magazine)
	}
	if got := r.ledger(t).Reserve(components.Ammo9mm); got != 0 {
		t.Errorf("expected reserve 0, got %d", got)
	}
}

func TestRequestReload_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		magazine int
		reserve  int
		want     bool
	}{
		{"full magazine", 30, 85, false},
		{"no reserve", 0, 0, false},
		{"partial magazine", 12, 85, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRig(t)
			r.weapon(t).Magazine = tt.magazine
			r.ledger(t).Reserves[components.Ammo9mm] = tt.reserve

			if got := r.sim.Combat.CanReload(r.player); got != tt.want {
				t.Errorf("CanReload() = %v, want %v", got, tt.want)
			}
			r.sim.Combat.RequestReload(r.player)
			reloading := r.sim.Combat.GetCombatState(r.player) == components.CombatStateReloading
			if reloading != tt.want {
				t.Errorf("reloading = %v, want %v", reloading, tt.want)
			}
		})
	}
}

// TestFireAndReload_NoOpOutsideUnoccupied 非空闲状态下开火、换弹不改变任何计数
func TestFireAndReload_NoOpOutsideUnoccupied(t *testing.T) {
	states := []components.CombatState{
		components.CombatStateFireTimerInProgress,
		components.CombatStateReloading,
		components.CombatStateEquipping,
		components.CombatStateStunned,
	}

	for _, state := range states {
		t.Run(state.String(), func(t *testing.T) {
			r := newTestRig(t)
			weapon := r.weapon(t)
			weapon.Magazine = 10
			r.combat(t).State = state

			r.sim.Combat.RequestFire(r.player)
			r.sim.Combat.RequestReload(r.player)

			if r.combat(t).State != state {
				t.Errorf("state changed to %v", r.combat(t).State)
			}
			if weapon.Magazine != 10 {
				t.Errorf("magazine changed to %d", weapon.Magazine)
			}
			if got := r.ledger(t).Reserve(components.Ammo9mm); got != 85 {
				t.Errorf("reserve changed to %d", got)
			}
			if r.sim.Timers.IsActive(game.TimerHandle{Owner: r.player, Purpose: game.TimerAutoFire}) {
				t.Error("no fire timer should be armed")
			}
		})
	}
}

func TestRequestFire_ConsumesAmmoAndEntersCooldown(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)

	r.sim.Combat.RequestFire(r.player)

	if weapon.Magazine != 29 {
		t.Errorf("expected magazine 29, got %d", weapon.Magazine)
	}
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateFireTimerInProgress {
		t.Errorf("expected FireTimerInProgress, got %v", got)
	}
	if r.effects.soundCount(weapon.FireSound) != 1 {
		t.Error("fire sound should play once")
	}
	if r.anim.played("HipFireMontage") != 1 {
		t.Error("hip fire montage should play once")
	}
	if !r.combat(t).FiringBullet {
		t.Error("crosshair shot window should be open")
	}

	// 间隔内再次开火无效
	r.sim.Combat.RequestFire(r.player)
	if weapon.Magazine != 29 {
		t.Errorf("fire during cooldown consumed ammo, magazine=%d", weapon.Magazine)
	}

	r.sim.Update(weapon.FireInterval)
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
		t.Errorf("expected Unoccupied after the fire interval, got %v", got)
	}
	if r.combat(t).FiringBullet {
		t.Error("crosshair shot window should be closed")
	}
}

// TestAutomaticFire_RefiresWhileHeld 按住开火键时自动武器连发
func TestAutomaticFire_RefiresWhileHeld(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)

	r.sim.Combat.FireButtonPressed(r.player)
	r.sim.Update(weapon.FireInterval)
	r.sim.Update(weapon.FireInterval)

	if weapon.Magazine != 27 {
		t.Errorf("expected 3 shots while held, magazine=%d", weapon.Magazine)
	}

	r.sim.Combat.FireButtonReleased(r.player)
	r.sim.Update(weapon.FireInterval)
	r.sim.Update(weapon.FireInterval)

	if weapon.Magazine != 27 {
		t.Errorf("fire continued after release, magazine=%d", weapon.Magazine)
	}
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
		t.Errorf("expected Unoccupied, got %v", got)
	}
}

func TestSemiAutomaticFire_SingleShot(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Automatic = false

	r.sim.Combat.FireButtonPressed(r.player)
	r.sim.Update(weapon.FireInterval)
	r.sim.Update(weapon.FireInterval)

	if weapon.Magazine != 29 {
		t.Errorf("semi-automatic weapon should fire once, magazine=%d", weapon.Magazine)
	}
}

// TestEmptyMagazine_AutoReload 打空弹匣后射击间隔结束时自动换弹
func TestEmptyMagazine_AutoReload(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 1

	r.sim.Combat.RequestFire(r.player)
	r.sim.Update(weapon.FireInterval)

	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateReloading {
		t.Fatalf("expected automatic reload, got %v", got)
	}
	if r.sim.Combat.CanFire(r.player) {
		t.Error("CanFire should be false while reloading")
	}
}

// TestStunDuringReload_NoTransfer 换弹被硬直打断后，迟到的换弹回调不转移弹药
func TestStunDuringReload_NoTransfer(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 0

	r.sim.Combat.RequestReload(r.player)
	r.sim.Combat.RequestStun(r.player)

	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateStunned {
		t.Fatalf("expected Stunned, got %v", got)
	}

	r.sim.Update(weapon.ReloadDuration)

	if weapon.Magazine != 0 {
		t.Errorf("interrupted reload must not fill the magazine, got %d", weapon.Magazine)
	}
	if got := r.ledger(t).Reserve(components.Ammo9mm); got != 85 {
		t.Errorf("interrupted reload must not spend reserve, got %d", got)
	}
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
		t.Errorf("expected Unoccupied after stun, got %v", got)
	}
}

// TestStun_PreemptsEveryState 硬直打断任意动作状态，被打断动作的计时器到期后不会改写状态
func TestStun_PreemptsEveryState(t *testing.T) {
	tests := []struct {
		name      string
		start     func(t *testing.T, r *testRig) float64 // 进入状态并返回被打断动作的时长
		wantState components.CombatState
		check     func(t *testing.T, r *testRig)
	}{
		{
			name: "reloading",
			start: func(t *testing.T, r *testRig) float64 {
				r.weapon(t).Magazine = 0
				r.sim.Combat.RequestReload(r.player)
				return r.weapon(t).ReloadDuration
			},
			wantState: components.CombatStateReloading,
			check: func(t *testing.T, r *testRig) {
				if r.weapon(t).Magazine != 0 || r.ledger(t).Reserve(components.Ammo9mm) != 85 {
					t.Errorf("interrupted reload transferred ammo, magazine=%d", r.weapon(t).Magazine)
				}
			},
		},
		{
			name: "equipping",
			start: func(t *testing.T, r *testRig) float64 {
				rifle, _ := r.sim.SpawnWeapon("rifle", utils.Vec3{})
				r.sim.Inventory.Add(r.player, rifle)
				r.sim.Combat.RequestEquip(r.player, 1)
				return r.combat(t).EquipDuration
			},
			wantState: components.CombatStateEquipping,
			check: func(t *testing.T, r *testRig) {
				if r.weapon(t).Name != "rifle" {
					t.Errorf("equip should keep the new weapon, got %s", r.weapon(t).Name)
				}
			},
		},
		{
			name: "fire timer in progress",
			start: func(t *testing.T, r *testRig) float64 {
				r.sim.Combat.FireButtonPressed(r.player)
				return r.weapon(t).FireInterval
			},
			wantState: components.CombatStateFireTimerInProgress,
			check: func(t *testing.T, r *testRig) {
				if w := r.weapon(t); w.Magazine != w.Capacity-1 {
					t.Errorf("held trigger refired after the stun, magazine=%d", w.Magazine)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRig(t)
			interrupted := tt.start(t, r)
			if got := r.sim.Combat.GetCombatState(r.player); got != tt.wantState {
				t.Fatalf("expected %v before the stun, got %v", tt.wantState, got)
			}

			r.sim.Combat.RequestStun(r.player)
			stun := r.combat(t).StunDuration
			r.sim.Update(math.Min(interrupted, stun*0.9))
			if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateStunned {
				t.Fatalf("expected Stunned to survive the interrupted timer, got %v", got)
			}

			r.sim.Update(stun)
			r.sim.Update(interrupted)
			if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
				t.Errorf("expected Unoccupied after the stun, got %v", got)
			}
			tt.check(t, r)
		})
	}
}

func TestRequestStun_IgnoredWhenDead(t *testing.T) {
	r := newTestRig(t)
	healthOf(t, r.sim.EntityManager, r.player).Current = 0
	healthOf(t, r.sim.EntityManager, r.player).Dead = true

	r.sim.Combat.RequestStun(r.player)

	if got := r.sim.Combat.GetCombatState(r.player); got == components.CombatStateStunned {
		t.Error("dead character must not be stunned")
	}
}

func TestAim_BlockedDuringReloadAndRestored(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 0

	r.sim.Combat.RequestReload(r.player)
	r.sim.Combat.AimButtonPressed(r.player)
	if r.combat(t).Aiming {
		t.Fatal("aiming should be blocked while reloading")
	}
	if got := r.sim.Combat.LookScale(r.player); got != r.combat(t).HipLookRate {
		t.Errorf("expected hip look rate %v, got %v", r.combat(t).HipLookRate, got)
	}

	r.sim.Update(weapon.ReloadDuration)

	if !r.combat(t).Aiming {
		t.Error("aiming should resume when the aim button is still held")
	}
	if got := r.sim.Combat.LookScale(r.player); got != r.combat(t).AimLookRate {
		t.Errorf("expected aim look rate %v, got %v", r.combat(t).AimLookRate, got)
	}

	r.sim.Combat.AimButtonReleased(r.player)
	if r.combat(t).Aiming {
		t.Error("releasing aim should stop aiming")
	}
}

func TestRequestEquip_SwitchesWeapons(t *testing.T) {
	r := newTestRig(t)
	smg := r.sim.Combat.GetEquippedWeapon(r.player)
	rifle, err := r.sim.SpawnWeapon("rifle", utils.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	r.sim.Inventory.Add(r.player, rifle)
	if slot := itemOf(t, r.sim.EntityManager, rifle).SlotIndex; slot != 1 {
		t.Fatalf("expected rifle in slot 1, got %d", slot)
	}

	r.sim.Combat.RequestEquip(r.player, 1)

	if got := r.sim.Combat.GetEquippedWeapon(r.player); got != rifle {
		t.Fatalf("expected rifle equipped, got %d", got)
	}
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateEquipping {
		t.Errorf("expected Equipping, got %v", got)
	}
	if got := itemOf(t, r.sim.EntityManager, smg).State; got != components.ItemStatePickedUp {
		t.Errorf("old weapon should be PickedUp, got %v", got)
	}
	if got := itemOf(t, r.sim.EntityManager, rifle).State; got != components.ItemStateEquipped {
		t.Errorf("new weapon should be Equipped, got %v", got)
	}

	events := r.sim.Events.Drain()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	changed, ok := events[0].(game.EquipSlotChangedEvent)
	if !ok || changed.FromSlot != 0 || changed.ToSlot != 1 {
		t.Errorf("unexpected event %+v", events[0])
	}

	r.sim.Update(r.combat(t).EquipDuration)
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
		t.Errorf("expected Unoccupied after equipping, got %v", got)
	}
}

func TestRequestEquip_InvalidSlots(t *testing.T) {
	tests := []struct {
		name string
		slot int
	}{
		{"same slot", 0},
		{"past inventory size", 1},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRig(t)
			before := r.sim.Combat.GetEquippedWeapon(r.player)

			r.sim.Combat.RequestEquip(r.player, tt.slot)

			if got := r.sim.Combat.GetEquippedWeapon(r.player); got != before {
				t.Errorf("equipped weapon changed to %d", got)
			}
			if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateUnoccupied {
				t.Errorf("state changed to %v", got)
			}
			if r.sim.Events.Len() != 0 {
				t.Error("no event expected")
			}
		})
	}
}

func TestPickupAmmo_ReloadsEmptyWeapon(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 0
	r.ledger(t).Reserves[components.Ammo9mm] = 0

	r.sim.Combat.PickupAmmo(r.player, components.AmmoAR, 24)
	if r.sim.Combat.GetCombatState(r.player) == components.CombatStateReloading {
		t.Fatal("different ammo type should not trigger a reload")
	}

	r.sim.Combat.PickupAmmo(r.player, components.Ammo9mm, 30)
	if got := r.sim.Combat.GetCombatState(r.player); got != components.CombatStateReloading {
		t.Errorf("expected automatic reload, got %v", got)
	}
}

func TestHandleDeath_DisablesInput(t *testing.T) {
	r := newTestRig(t)
	weapon := r.weapon(t)
	weapon.Magazine = 0
	r.sim.Combat.RequestReload(r.player)

	r.sim.Damage.ApplyDamage(r.player, 1000, ecs.InvalidEntity)

	if !r.sim.Combat.IsDead(r.player) {
		t.Fatal("player should be dead")
	}
	if r.sim.Timers.IsActive(game.TimerHandle{Owner: r.player, Purpose: game.TimerReload}) {
		t.Error("death should cancel the reload timer")
	}
	r.sim.Combat.FinishDeath(r.player)
	if !r.combat(t).InputDisabled {
		t.Error("input should be disabled after the death animation")
	}

	r.sim.Combat.FireButtonPressed(r.player)
	r.sim.Combat.RequestReload(r.player)
	if weapon.Magazine != 0 {
		t.Errorf("dead player fired or reloaded, magazine=%d", weapon.Magazine)
	}
}
