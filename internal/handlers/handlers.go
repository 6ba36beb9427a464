package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Admin          *AdminHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Fusion, services.Content, logger),
		Admin:          NewAdminHandler(services.Engine, logger),
	}
}
