// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/internal/templates"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/mounts"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/samba"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/shares"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/users"
)

// Handler serves the panel page and the JSON API on top of the share,
// mount, and user stores.
type Handler struct {
	shares  *shares.Store
	mounts  *mounts.Store
	users   *users.Manager
	service *samba.Gateway
	flash   *flashCodec
	tmpl    *template.Template
	logger  logger.Logger
}

// NewHandler wires the stores and gateways into a panel handler.
func NewHandler(
	shareStore *shares.Store,
	mountStore *mounts.Store,
	userManager *users.Manager,
	gateway *samba.Gateway,
	secretKey string,
	l logger.Logger,
) (*Handler, error) {
	tmpl, err := templates.ParsePanel()
	if err != nil {
		return nil, fmt.Errorf("failed to parse panel templates: %w", err)
	}

	return &Handler{
		shares:  shareStore,
		mounts:  mountStore,
		users:   userManager,
		service: gateway,
		flash:   newFlashCodec(secretKey),
		tmpl:    tmpl,
		logger:  l,
	}, nil
}

// panelData carries everything the panel template renders.
type panelData struct {
	Shares       []shares.Share
	Mounts       []mounts.Entry
	Users        []users.User
	Service      *samba.ServiceStatus
	Hostname     string
	ActiveMounts int
	Flash        string
}

// Panel renders the control panel. A failing store degrades its section to
// empty rather than breaking the whole page.
func (h *Handler) Panel(c *gin.Context) {
	ctx := c.Request.Context()
	data := panelData{
		Hostname: h.service.Hostname(),
		Flash:    h.flash.takeFlash(c),
	}

	shareList, err := h.shares.ListShares(ctx)
	if err != nil {
		h.logger.Warn("Failed to list shares for panel", "err", err)
	} else {
		data.Shares = shareList
	}

	entries, err := h.mounts.ListEntries(ctx)
	if err != nil {
		h.logger.Warn("Failed to list mount entries for panel", "err", err)
	} else {
		data.Mounts = entries
		for _, entry := range entries {
			if entry.IsMounted {
				data.ActiveMounts++
			}
		}
	}

	userList, err := h.users.List(ctx)
	if err != nil {
		h.logger.Warn("Failed to list users for panel", "err", err)
	} else {
		data.Users = userList
	}

	status, err := h.service.Status(ctx)
	if err != nil {
		h.logger.Warn("Failed to read service status for panel", "err", err)
		status = &samba.ServiceStatus{State: "unknown", Status: "Unknown"}
	}
	data.Service = status

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(c.Writer, "index.tmpl", data); err != nil {
		h.logger.Error("Failed to render panel", "err", err)
	}
}

// PanelAction handles a panel form submission: parse into a typed action,
// dispatch, flash the outcome, redirect back to the panel.
func (h *Handler) PanelAction(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.flash.setFlash(c, "Invalid form submission")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	req, err := ParseActionRequest(c.Request.PostForm)
	if err != nil {
		c.Error(err)
		h.flash.setFlash(c, flashMessage(err))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	message, err := h.dispatch(c, req)
	if err != nil {
		c.Error(err)
		h.flash.setFlash(c, flashMessage(err))
	} else {
		h.flash.setFlash(c, message)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// flashMessage renders an error for the panel banner.
func flashMessage(err error) string {
	if pe, ok := errors.IsPanelError(err); ok {
		if pe.Details != "" {
			return fmt.Sprintf("%s: %s", pe.Message, pe.Details)
		}
		return pe.Message
	}
	return err.Error()
}

// dispatch routes a typed action to the matching store or gateway and
// returns the success message for the flash banner.
func (h *Handler) dispatch(c *gin.Context, req *ActionRequest) (string, error) {
	ctx := c.Request.Context()

	switch req.Action {
	case ActionAddShare:
		if err := h.shares.AddShare(ctx, *req.AddShare); err != nil {
			return "", err
		}
		return fmt.Sprintf("Share '%s' added", req.AddShare.Name), nil

	case ActionDeleteShare:
		if err := h.shares.DeleteShare(ctx, req.DeleteShare.Name); err != nil {
			return "", err
		}
		return fmt.Sprintf("Share '%s' deleted", req.DeleteShare.Name), nil

	case ActionAddUser:
		if err := h.users.Create(ctx, *req.AddUser); err != nil {
			return "", err
		}
		return fmt.Sprintf("User '%s' created", req.AddUser.Username), nil

	case ActionDeleteUser:
		if err := h.users.Delete(ctx, req.DeleteUser.Username); err != nil {
			return "", err
		}
		return fmt.Sprintf("User '%s' deleted", req.DeleteUser.Username), nil

	case ActionAddMount:
		if err := h.mounts.AddEntry(ctx, *req.AddMount); err != nil {
			return "", err
		}
		return fmt.Sprintf("Mount entry for '%s' added", req.AddMount.Mountpoint), nil

	case ActionDeleteMount:
		if err := h.mounts.DeleteEntry(ctx, req.DeleteMount.Mountpoint); err != nil {
			return "", err
		}
		return fmt.Sprintf("Mount entry for '%s' removed", req.DeleteMount.Mountpoint), nil

	case ActionMount:
		if err := h.mounts.Mount(ctx, req.Mount.Mountpoint); err != nil {
			return "", err
		}
		return fmt.Sprintf("Mounted '%s'", req.Mount.Mountpoint), nil

	case ActionUnmount:
		if err := h.mounts.Unmount(ctx, req.Unmount.Mountpoint); err != nil {
			return "", err
		}
		return fmt.Sprintf("Unmounted '%s'", req.Unmount.Mountpoint), nil

	case ActionApplyMounts:
		if _, err := h.mounts.ApplyAll(ctx); err != nil {
			return "", err
		}
		return "All mount entries applied", nil

	case ActionRestartService:
		if err := h.service.Restart(ctx); err != nil {
			return "", err
		}
		return "Samba service restarted", nil

	case ActionBackupConfig:
		path, err := h.shares.Backup(ctx)
		if err != nil {
			return "", err
		}
		if path == "" {
			return "Nothing to back up", nil
		}
		return fmt.Sprintf("Configuration backed up to %s", path), nil

	case ActionTestConfig:
		if _, err := h.service.TestConfig(ctx); err != nil {
			return "", err
		}
		return "Configuration test passed", nil
	}

	return "", errors.New(errors.ServerUnknownAction, string(req.Action))
}
