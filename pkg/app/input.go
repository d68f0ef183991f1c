package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
)

// 鼠标每像素对应的转角(度)
const mouseSensitivity = 0.15

// 方向键转动速度(度/帧)
const keyTurnRate = 2.0

// InputFrame 一帧的输入快照，与 ebiten 解耦以便测试
type InputFrame struct {
	Forward, Strafe float64 // [-1, 1]
	Yaw, Pitch      float64 // 本帧转角(度)

	FirePressed, FireReleased bool
	AimPressed, AimReleased   bool
	Reload                    bool
	Select                    bool
	EquipSlot                 int // -1 表示没有按下槽位键
	Save                      bool
}

var slotKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
}

// pointer 记录上一帧的鼠标位置
type pointer struct {
	lastX, lastY int
	valid        bool
}

// readInput 读取当前帧的键鼠状态
// WASD 移动，鼠标或方向键转视角，左键开火，右键瞄准，R 换弹，E 拾取，1~6 切换槽位，F5 存档
func readInput(p *pointer) InputFrame {
	in := InputFrame{EquipSlot: -1}

	if ebiten.IsKeyPressed(ebiten.KeyW) {
		in.Forward++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		in.Forward--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		in.Strafe++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		in.Strafe--
	}

	x, y := ebiten.CursorPosition()
	if p.valid && ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		in.Yaw -= float64(x-p.lastX) * mouseSensitivity
		in.Pitch -= float64(y-p.lastY) * mouseSensitivity
	}
	p.lastX, p.lastY, p.valid = x, y, true

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Yaw += keyTurnRate
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Yaw -= keyTurnRate
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Pitch += keyTurnRate
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Pitch -= keyTurnRate
	}

	in.FirePressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	in.FireReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	in.AimPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	in.AimReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight)
	in.Reload = inpututil.IsKeyJustPressed(ebiten.KeyR)
	in.Select = inpututil.IsKeyJustPressed(ebiten.KeyE)
	in.Save = inpututil.IsKeyJustPressed(ebiten.KeyF5)
	for i, key := range slotKeys {
		if inpututil.IsKeyJustPressed(key) {
			in.EquipSlot = i
			break
		}
	}
	return in
}

// applyInput 把输入快照转成对战斗核心的调用
// 死亡动画结束后输入被禁用
func (s *Session) applyInput(in InputFrame) {
	player := s.Player
	combat, ok := ecs.GetComponent[*components.CombatComponent](s.Sim.EntityManager, player)
	if !ok || combat.InputDisabled {
		s.Arena.SetMoveInput(0, 0)
		return
	}

	s.Arena.SetMoveInput(in.Forward, in.Strafe)
	if in.Yaw != 0 || in.Pitch != 0 {
		s.Arena.Turn(in.Yaw, in.Pitch)
	}

	if in.FirePressed {
		s.Sim.Combat.FireButtonPressed(player)
	}
	if in.FireReleased {
		s.Sim.Combat.FireButtonReleased(player)
	}
	if in.AimPressed {
		s.Sim.Combat.AimButtonPressed(player)
	}
	if in.AimReleased {
		s.Sim.Combat.AimButtonReleased(player)
	}
	if in.Reload {
		s.Sim.Combat.RequestReload(player)
	}
	if in.Select {
		s.Sim.Inventory.SelectButtonPressed(player)
	}
	if in.EquipSlot >= 0 {
		s.Sim.Combat.RequestEquip(player, in.EquipSlot)
	}
	if in.Save {
		if err := s.SaveLoadout(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to save loadout")
		} else {
			s.pushMessage("loadout saved")
		}
	}
}
