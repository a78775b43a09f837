package v1

import (
	"pesagate/api/internal/config"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	services *service.Services
	db       *gorm.DB
	config   *config.Config
	log      logger.Logger
}

func (h *Handler) InitRoutes(g *gin.RouterGroup) {
	{
		h.initCallbackRoutes(g)
		h.initSettingsRoutes(g)
	}
}

func NewHandler(services *service.Services, db *gorm.DB, config *config.Config, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		log:      log,
		services: services,
		db:       db,
	}
}
