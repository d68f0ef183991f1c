// Package app 提供游戏应用的核心包装器
//
// Session 组装战斗模拟、沙盒世界和持久化；App 在其上实现 ebiten.Game，
// 用俯视图和调试文字显示战斗状态。
package app

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

const (
	// 逻辑屏幕尺寸
	ScreenWidth  = 1280
	ScreenHeight = 720

	// 俯视图缩放(像素/厘米)
	mapScale = 0.25
)

var (
	colorGround   = color.RGBA{R: 40, G: 44, B: 52, A: 255}
	colorGrid     = color.RGBA{R: 60, G: 66, B: 76, A: 255}
	colorPlayer   = color.RGBA{R: 90, G: 170, B: 255, A: 255}
	colorEnemy    = color.RGBA{R: 220, G: 70, B: 60, A: 255}
	colorDying    = color.RGBA{R: 110, G: 50, B: 50, A: 255}
	colorStunned  = color.RGBA{R: 240, G: 200, B: 60, A: 255}
	colorHealth   = color.RGBA{R: 80, G: 220, B: 90, A: 255}
	colorBeam     = color.RGBA{R: 255, G: 255, B: 255, A: 120}
	colorSelected = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// 稀有度颜色，下标为 ItemRarity
var rarityColors = []color.RGBA{
	{R: 140, G: 140, B: 140, A: 255},
	{R: 230, G: 230, B: 230, A: 255},
	{R: 90, G: 220, B: 90, A: 255},
	{R: 80, G: 140, B: 255, A: 255},
	{R: 200, G: 120, B: 255, A: 255},
}

// App 实现 ebiten.Game 接口
type App struct {
	session   *Session
	pointer   pointer
	deltaTime float64
}

// NewApp 创建桌面端应用；调用方负责在退出时关闭 session
func NewApp(session *Session) *App {
	tps := session.Runtime.TPS
	if tps <= 0 {
		tps = 60
	}
	return &App{session: session, deltaTime: 1 / float64(tps)}
}

// Update 读取输入并推进一个 tick
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	a.session.applyInput(readInput(&a.pointer))
	a.session.Update(a.deltaTime)
	return nil
}

// Draw 绘制俯视图和 HUD
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(colorGround)
	center := actorPos(a.session, a.session.Player)

	a.drawGrid(screen, center)
	a.drawItems(screen, center)
	a.drawEnemies(screen, center)
	a.drawPlayer(screen, center)
	ebitenutil.DebugPrintAt(screen, a.hudText(), 8, 8)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// toScreen 世界坐标转俯视图坐标，玩家在屏幕中心，+X 朝右，+Y 朝上
func toScreen(world, center utils.Vec3) (float32, float32) {
	x := ScreenWidth/2 + (world.X-center.X)*mapScale
	y := ScreenHeight/2 - (world.Y-center.Y)*mapScale
	return float32(x), float32(y)
}

func actorPos(s *Session, id ecs.EntityID) utils.Vec3 {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.Sim.EntityManager, id); ok {
		return tr.Position
	}
	return utils.Vec3{}
}

func (a *App) drawGrid(screen *ebiten.Image, center utils.Vec3) {
	const step = 500.0
	half := float64(ScreenWidth) / mapScale
	startX := float64(int(center.X/step)-int(half/step)) * step
	startY := float64(int(center.Y/step)-int(half/step)) * step
	for i := 0.0; i <= 2*half; i += step {
		x0, y0 := toScreen(utils.Vec3{X: startX + i, Y: startY}, center)
		x1, y1 := toScreen(utils.Vec3{X: startX + i, Y: startY + 2*half}, center)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorGrid, false)
		x0, y0 = toScreen(utils.Vec3{X: startX, Y: startY + i}, center)
		x1, y1 = toScreen(utils.Vec3{X: startX + 2*half, Y: startY + i}, center)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorGrid, false)
	}
}

func (a *App) drawItems(screen *ebiten.Image, center utils.Vec3) {
	em := a.session.Sim.EntityManager
	inv, _ := ecs.GetComponent[*components.InventoryComponent](em, a.session.Player)
	for _, id := range ecs.GetEntitiesWith2[*components.ItemComponent, *components.TransformComponent](em) {
		item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
		if !item.MeshVisible || item.State == components.ItemStateEquipped {
			continue
		}
		x, y := toScreen(actorPos(a.session, id), center)
		size := float32(10)
		if item.Type == components.ItemTypeAmmo {
			size = 7
		}
		clr := rarityColors[int(item.Rarity)%len(rarityColors)]
		vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, clr, false)
		if inv != nil && inv.TracedItem == id {
			vector.StrokeRect(screen, x-size, y-size, 2*size, 2*size, 1, colorSelected, false)
			label := item.Name
			if item.InventoryFull {
				label += " [full]"
			}
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %s", label, strings.Repeat("*", item.Rarity.ActiveStars())), int(x)+12, int(y)-8)
		}
	}
}

func (a *App) drawEnemies(screen *ebiten.Image, center utils.Vec3) {
	em := a.session.Sim.EntityManager
	radius := float32(a.session.Arena.Config().EnemyRadius * mapScale)
	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.TransformComponent](em) {
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
		tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
		x, y := toScreen(tr.Position, center)

		clr := colorEnemy
		switch {
		case enemy.Dying:
			clr = colorDying
		case enemy.Stunned:
			clr = colorStunned
		}
		vector.DrawFilledCircle(screen, x, y, radius, clr, true)
		fx, fy := toScreen(tr.Position.Add(utils.YawForward(tr.Yaw).Scale(80)), center)
		vector.StrokeLine(screen, x, y, fx, fy, 2, clr, true)

		if enemy.HealthBarVisible {
			if h, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok && h.Max > 0 {
				w := float32(30)
				vector.DrawFilledRect(screen, x-w/2, y-radius-8, w*float32(h.Current/h.Max), 3, colorHealth, false)
			}
		}
	}
}

func (a *App) drawPlayer(screen *ebiten.Image, center utils.Vec3) {
	s := a.session
	x, y := toScreen(center, center)
	vector.DrawFilledCircle(screen, x, y, float32(40*mapScale), colorPlayer, true)

	player, ok := ecs.GetComponent[*components.PlayerComponent](s.Sim.EntityManager, s.Player)
	if !ok {
		return
	}
	origin, dir, ok := s.Arena.DeprojectScreenToWorld(player.CrosshairX, player.CrosshairY)
	if !ok {
		return
	}
	end := origin.Add(dir.Scale(3000))
	if hit := s.Arena.LineTrace(origin, end); hit.Blocking {
		end = hit.Location
	}
	x0, y0 := toScreen(center, center)
	x1, y1 := toScreen(end, center)
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorBeam, true)
}

func (a *App) hudText() string {
	s := a.session
	em := s.Sim.EntityManager
	var b strings.Builder

	state := s.Sim.Combat.GetCombatState(s.Player)
	health, _ := ecs.GetComponent[*components.HealthComponent](em, s.Player)
	fmt.Fprintf(&b, "state: %s", state)
	if health != nil {
		fmt.Fprintf(&b, "  health: %.0f/%.0f", health.Current, health.Max)
		if health.Dead {
			b.WriteString("  DEAD")
		}
	}
	b.WriteString("\n")

	if id := s.Sim.Combat.GetEquippedWeapon(s.Player); id != ecs.InvalidEntity {
		weapon, _ := ecs.GetComponent[*components.WeaponComponent](em, id)
		ledger, _ := ecs.GetComponent[*components.AmmoLedgerComponent](em, s.Player)
		reserve := 0
		if ledger != nil {
			reserve = ledger.Reserve(weapon.AmmoType)
		}
		fmt.Fprintf(&b, "weapon: %s  %d/%d  reserve %s: %d\n", weapon.Name, weapon.Magazine, weapon.Capacity, weapon.AmmoType, reserve)
	}

	if inv, ok := ecs.GetComponent[*components.InventoryComponent](em, s.Player); ok {
		b.WriteString("slots:")
		for i := 0; i < inv.Capacity; i++ {
			name := "-"
			if w, ok := ecs.GetComponent[*components.WeaponComponent](em, inv.ItemAt(i)); ok {
				name = w.Name
			}
			if inv.HighlightedSlot == i {
				name = "[" + name + "]"
			}
			fmt.Fprintf(&b, " %d:%s", i+1, name)
		}
		b.WriteString("\n")
	}

	kills, err := s.Ledger.Count("enemy")
	if err == nil {
		fmt.Fprintf(&b, "kills: %d  enemies left: %d\n", kills, s.EnemiesAlive())
	}

	b.WriteString("\n")
	for _, msg := range s.Messages() {
		b.WriteString(msg + "\n")
	}
	b.WriteString("\n")
	for _, line := range s.Feed.Lines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\nWASD move  arrows/middle-drag look  LMB fire  RMB aim  R reload  E pick up  1-6 slot  F5 save  Esc quit")
	return b.String()
}
