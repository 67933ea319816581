// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/mounts"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/shares"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/users"
)

// Action discriminates the panel form submissions.
type Action string

const (
	ActionAddShare       Action = "add_share"
	ActionDeleteShare    Action = "delete_share"
	ActionAddUser        Action = "add_user"
	ActionDeleteUser     Action = "delete_user"
	ActionAddMount       Action = "add_mount"
	ActionDeleteMount    Action = "delete_mount"
	ActionMount          Action = "mount"
	ActionUnmount        Action = "umount"
	ActionApplyMounts    Action = "apply_mounts"
	ActionRestartService Action = "restart_service"
	ActionBackupConfig   Action = "backup_config"
	ActionTestConfig     Action = "test_config"
)

// DeleteShareForm names the share to remove.
type DeleteShareForm struct {
	Name string `validate:"required"`
}

// DeleteUserForm names the user to remove.
type DeleteUserForm struct {
	Username string `validate:"required"`
}

// MountpointForm names the mountpoint an operation targets.
type MountpointForm struct {
	Mountpoint string `validate:"required"`
}

// ActionRequest is the typed form of a panel POST. Exactly one of the
// payload fields is set, selected by Action; actions without parameters
// carry none.
type ActionRequest struct {
	Action Action

	AddShare    *shares.Share
	DeleteShare *DeleteShareForm
	AddUser     *users.CreateUserRequest
	DeleteUser  *DeleteUserForm
	AddMount    *mounts.AddEntryRequest
	DeleteMount *MountpointForm
	Mount       *MountpointForm
	Unmount     *MountpointForm
}

var validate = validator.New()

// formValue returns a trimmed form field.
func formValue(form url.Values, key string) string {
	return strings.TrimSpace(form.Get(key))
}

// formYes reads a yes/no field with a default for absent values.
func formYes(form url.Values, key, fallback string) bool {
	value := fallback
	if form.Has(key) {
		value = form.Get(key)
	}
	return value == "yes"
}

// ParseActionRequest maps a submitted form to a typed ActionRequest. All
// field presence checks happen here, at the boundary; handlers downstream
// never see raw form values.
func ParseActionRequest(form url.Values) (*ActionRequest, error) {
	action := Action(form.Get("action"))
	req := &ActionRequest{Action: action}

	switch action {
	case ActionAddShare:
		share := shares.NewShare(formValue(form, "share_name"), formValue(form, "path"))
		share.Comment = formValue(form, "comment")
		share.ValidUsers = formValue(form, "valid_users")
		share.Writable = formYes(form, "writable", "yes")
		share.GuestOK = formYes(form, "guest_ok", "no")
		req.AddShare = &share

	case ActionDeleteShare:
		req.DeleteShare = &DeleteShareForm{Name: formValue(form, "share_name")}

	case ActionAddUser:
		password := formValue(form, "password")
		if form.Has("password2") && formValue(form, "password2") != password {
			return nil, errors.New(errors.ServerRequestValidation, "passwords do not match")
		}
		req.AddUser = &users.CreateUserRequest{
			Username: formValue(form, "username"),
			Password: password,
		}

	case ActionDeleteUser:
		req.DeleteUser = &DeleteUserForm{Username: formValue(form, "username")}

	case ActionAddMount:
		req.AddMount = &mounts.AddEntryRequest{
			Remote:     formValue(form, "remote"),
			Mountpoint: formValue(form, "mountpoint"),
			FSType:     formValue(form, "fstype"),
			Username:   formValue(form, "mount_username"),
			Password:   formValue(form, "mount_password"),
			Options:    formValue(form, "options"),
		}

	case ActionDeleteMount:
		req.DeleteMount = &MountpointForm{Mountpoint: formValue(form, "mountpoint")}

	case ActionMount:
		req.Mount = &MountpointForm{Mountpoint: formValue(form, "mountpoint")}

	case ActionUnmount:
		req.Unmount = &MountpointForm{Mountpoint: formValue(form, "mountpoint")}

	case ActionApplyMounts, ActionRestartService, ActionBackupConfig, ActionTestConfig:
		// No parameters

	default:
		return nil, errors.New(errors.ServerUnknownAction, string(action))
	}

	if err := req.validatePayload(); err != nil {
		return nil, err
	}

	return req, nil
}

// validatePayload runs struct validation on whichever payload is set.
func (r *ActionRequest) validatePayload() error {
	var payload interface{}
	switch {
	case r.AddShare != nil:
		payload = r.AddShare
	case r.DeleteShare != nil:
		payload = r.DeleteShare
	case r.AddUser != nil:
		payload = r.AddUser
	case r.DeleteUser != nil:
		payload = r.DeleteUser
	case r.AddMount != nil:
		payload = r.AddMount
	case r.DeleteMount != nil:
		payload = r.DeleteMount
	case r.Mount != nil:
		payload = r.Mount
	case r.Unmount != nil:
		payload = r.Unmount
	default:
		return nil
	}

	if err := validate.Struct(payload); err != nil {
		return errors.New(errors.ServerRequestValidation, err.Error())
	}
	return nil
}
