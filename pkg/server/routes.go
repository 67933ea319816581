// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarekChromy/Sambacontrolcenter/internal/constants"
)

// registerRoutes wires the panel, the health endpoint, and the JSON API
// onto the engine.
func registerRoutes(engine *gin.Engine, handler *Handler) {
	engine.GET("/", handler.Panel)
	engine.POST("/", handler.PanelAction)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := engine.Group(constants.APIBase)
	{
		handler.RegisterRoutes(v1)
	}
}
