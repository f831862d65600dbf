package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/schoolhub/feepay/pkg/response"
)

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// @Summary      Health check
// @Description  Returns service status and whether the database answers a ping.
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespHealth
// @Failure      503  {object}  handlers.RespHealth
// @Router       /healthz [get]
func Healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := &HealthStatus{Status: "ok", Database: "ok"}
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				status.Status = "degraded"
				status.Database = err.Error()
				c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeError, status))
				return
			}
		}
		c.JSON(http.StatusOK, response.OKT(status))
	}
}

func RegisterHealthRoutes(r gin.IRouter, db *gorm.DB) {
	r.GET("/healthz", Healthz(db))
}
