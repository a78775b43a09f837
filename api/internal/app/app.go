package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pesagate/api/internal/config"
	"pesagate/api/internal/delivery"
	"pesagate/api/internal/infra/cache"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/service"

	"github.com/gin-gonic/gin"
	cors "github.com/rs/cors/wrapper/gin"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Db     *gorm.DB
	Log    logger.Logger
}

func (app *App) Start() {

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(cors.Default())

	results := app.initResults()

	services := service.NewServices(app.Db, app.Log, app.Config, results)

	{
		h := delivery.InitHandler(services, app.Db, app.Config, app.Log)

		h.InitAPI(r)
	}

	eChan := make(chan error)
	interrupt := make(chan os.Signal, 1)

	fmt.Println("pesagate web is starting")

	go func() {
		err := r.Run(app.Config.Api.Ipv4)
		if err != nil {
			eChan <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-eChan:
		app.Log.TemplHTTPError("app fatal error", app.Config.Api.Ipv4, err)
		return
	case <-interrupt:
		return
	}
}

// redis when configured, in-process store otherwise
func (app *App) initResults() cache.Results {
	if !app.Config.Redis.Enabled {
		return cache.InitMemoryResults()
	}

	results, err := cache.InitRedisResults(app.Config)
	if err != nil {
		panic("redis init error: " + err.Error())
	}

	fmt.Println("result cache: redis at " + app.Config.Redis.Addr)
	return results
}
