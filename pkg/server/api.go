// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/mounts"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/shares"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/users"
)

// APIResponse represents a standardized API response format
type APIResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents error information in API responses
type APIError struct {
	Code    int                    `json:"code"`
	Domain  string                 `json:"domain"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// sendSuccess sends a successful response with the standardized format
func (h *Handler) sendSuccess(c *gin.Context, statusCode int, result interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Result:  result,
	})
}

// sendError sends an error response with the standardized format
func (h *Handler) sendError(c *gin.Context, err error) {
	c.Error(err)
	response := APIResponse{Success: false}

	if pe, ok := errors.IsPanelError(err); ok {
		response.Error = &APIError{
			Code:    int(pe.Code),
			Domain:  string(pe.Domain),
			Message: pe.Message,
			Details: pe.Details,
			Meta:    make(map[string]interface{}),
		}
		for k, v := range pe.Metadata {
			response.Error.Meta[k] = v
		}
		c.JSON(pe.HTTPStatus, response)
		return
	}

	response.Error = &APIError{
		Code:    http.StatusInternalServerError,
		Domain:  string(errors.DomainServer),
		Message: "Internal server error",
		Details: err.Error(),
	}
	c.JSON(http.StatusInternalServerError, response)
}

// RegisterRoutes registers the JSON API under the given group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	sharesGroup := router.Group("/shares")
	{
		sharesGroup.GET("", h.listShares)
		sharesGroup.POST("", h.addShare)
		sharesGroup.DELETE("/:name", h.deleteShare)
		sharesGroup.GET("/config", h.rawConfig)
		sharesGroup.POST("/config/backup", h.backupConfig)
		sharesGroup.POST("/config/test", h.testConfig)
	}

	mountsGroup := router.Group("/mounts")
	{
		mountsGroup.GET("", h.listMounts)
		mountsGroup.POST("", h.addMount)
		mountsGroup.DELETE("/entry", h.deleteMount)
		mountsGroup.POST("/mount", h.mountEntry)
		mountsGroup.POST("/umount", h.unmountEntry)
		mountsGroup.POST("/apply", h.applyMounts)
	}

	usersGroup := router.Group("/users")
	{
		usersGroup.GET("", h.listUsers)
		usersGroup.POST("", h.addUser)
		usersGroup.DELETE("/:username", h.deleteUser)
		usersGroup.PUT("/:username/enable", h.enableUser)
		usersGroup.PUT("/:username/disable", h.disableUser)
	}

	serviceGroup := router.Group("/service")
	{
		serviceGroup.GET("/status", h.serviceStatus)
		serviceGroup.POST("/restart", h.restartService)
	}
}

// Shares

func (h *Handler) listShares(c *gin.Context) {
	shareList, err := h.shares.ListShares(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, map[string]interface{}{
		"shares": shareList,
		"count":  len(shareList),
	})
}

func (h *Handler) addShare(c *gin.Context) {
	var share shares.Share
	if err := c.ShouldBindJSON(&share); err != nil {
		h.sendError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	if err := h.shares.AddShare(c.Request.Context(), share); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusCreated, share)
}

func (h *Handler) deleteShare(c *gin.Context) {
	name := c.Param("name")
	if err := h.shares.DeleteShare(c.Request.Context(), name); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"deleted": name})
}

func (h *Handler) rawConfig(c *gin.Context) {
	content, err := h.shares.RawContent()
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"content": content})
}

func (h *Handler) backupConfig(c *gin.Context) {
	path, err := h.shares.Backup(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"backup": path})
}

func (h *Handler) testConfig(c *gin.Context) {
	output, err := h.service.TestConfig(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"output": output})
}

// Mounts

func (h *Handler) listMounts(c *gin.Context) {
	entries, err := h.mounts.ListEntries(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, map[string]interface{}{
		"mounts": entries,
		"count":  len(entries),
	})
}

func (h *Handler) addMount(c *gin.Context) {
	var req mounts.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	if err := h.mounts.AddEntry(c.Request.Context(), req); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusCreated, gin.H{"mountpoint": req.Mountpoint})
}

// mountpointQuery reads the mountpoint from JSON body or query parameter.
func mountpointQuery(c *gin.Context) (string, error) {
	var body struct {
		Mountpoint string `json:"mountpoint"`
	}
	if err := c.ShouldBindJSON(&body); err == nil && body.Mountpoint != "" {
		return body.Mountpoint, nil
	}
	if mp := c.Query("mountpoint"); mp != "" {
		return mp, nil
	}
	return "", errors.New(errors.ServerRequestValidation, "mountpoint is required")
}

func (h *Handler) deleteMount(c *gin.Context) {
	mountpoint, err := mountpointQuery(c)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := h.mounts.DeleteEntry(c.Request.Context(), mountpoint); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"deleted": mountpoint})
}

func (h *Handler) mountEntry(c *gin.Context) {
	mountpoint, err := mountpointQuery(c)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := h.mounts.Mount(c.Request.Context(), mountpoint); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"mounted": mountpoint})
}

func (h *Handler) unmountEntry(c *gin.Context) {
	mountpoint, err := mountpointQuery(c)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := h.mounts.Unmount(c.Request.Context(), mountpoint); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"unmounted": mountpoint})
}

func (h *Handler) applyMounts(c *gin.Context) {
	output, err := h.mounts.ApplyAll(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"output": output})
}

// Users

func (h *Handler) listUsers(c *gin.Context) {
	userList, err := h.users.List(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, map[string]interface{}{
		"users": userList,
		"count": len(userList),
	})
}

func (h *Handler) addUser(c *gin.Context) {
	var req users.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	if err := h.users.Create(c.Request.Context(), req); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusCreated, gin.H{"username": req.Username})
}

func (h *Handler) deleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.users.Delete(c.Request.Context(), username); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"deleted": username})
}

func (h *Handler) enableUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.users.Enable(c.Request.Context(), username); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"enabled": username})
}

func (h *Handler) disableUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.users.Disable(c.Request.Context(), username); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"disabled": username})
}

// Service

func (h *Handler) serviceStatus(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, status)
}

func (h *Handler) restartService(c *gin.Context) {
	if err := h.service.Restart(c.Request.Context()); err != nil {
		h.sendError(c, err)
		return
	}
	h.sendSuccess(c, http.StatusOK, gin.H{"restarted": true})
}
