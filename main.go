package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/shooter/pkg/app"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/embedded"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logging"
)

var configDir = flag.String("config", ".", "shooter.yaml 所在目录")

func main() {
	flag.Parse()

	// 初始化嵌入资源，必须在加载配置之前
	embedded.Init(dataFS)

	rc, err := config.LoadRuntime(*configDir)
	if err != nil {
		bootLogger := logging.New("info", nil)
		bootLogger.Fatal().Err(err).Msg("Failed to load runtime config")
	}
	logger := logging.New(rc.LogLevel, nil)

	// 存档不可用时降级为不保存
	var loadouts *game.LoadoutStore
	if m, err := gdata.Open(gdata.Config{AppName: rc.SaveAppName}); err != nil {
		logger.Warn().Err(err).Msg("Save storage unavailable, loadout will not persist")
		loadouts = game.NewLoadoutStore(nil, logger)
	} else {
		loadouts = game.NewLoadoutStore(m, logger)
	}

	session, err := app.NewSession(rc, loadouts, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start session")
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Shooter Arena")
	ebiten.SetTPS(rc.TPS)

	runErr := ebiten.RunGame(app.NewApp(session))
	if err := session.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close session")
	}
	if runErr != nil {
		logger.Error().Err(runErr).Msg("Game loop exited with error")
		os.Exit(1)
	}
}
