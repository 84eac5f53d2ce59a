package validation

import (
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type Registration struct {
	Email    string
	Password string
	Name     *string
}

type Credentials struct {
	Email    string
	Password string
}

type PasswordChange struct {
	Current string
	Next    string
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Register(req user.RegisterRequest) (Registration, error) {
	var c checker

	email := NormalizeEmail(req.Email)
	if c.required("email", email != "") {
		c.check("email", email, tagEmail)
	}

	if c.required("password", req.Password != "") {
		c.check("password", req.Password, tagPassword, tagPasswordBytes)
	}

	var name *string
	if req.Name != nil {
		if c.check("name", *req.Name, tagName) {
			trimmed := strings.TrimSpace(*req.Name)
			name = &trimmed
		}
	}

	if err := c.err(); err != nil {
		return Registration{}, err
	}

	return Registration{Email: email, Password: req.Password, Name: name}, nil
}

func Login(req user.LoginRequest) (Credentials, error) {
	var c checker

	email := NormalizeEmail(req.Email)
	if c.required("email", email != "") {
		c.check("email", email, tagEmail)
	}

	c.required("password", req.Password != "")

	if err := c.err(); err != nil {
		return Credentials{}, err
	}

	return Credentials{Email: email, Password: req.Password}, nil
}

func ChangePassword(req user.ChangePasswordRequest) (PasswordChange, error) {
	var c checker

	c.required("currentPassword", req.CurrentPassword != "")

	if c.required("newPassword", req.NewPassword != "") {
		c.check("newPassword", req.NewPassword, tagPassword, tagPasswordBytes)
	}

	if err := c.err(); err != nil {
		return PasswordChange{}, err
	}

	return PasswordChange{Current: req.CurrentPassword, Next: req.NewPassword}, nil
}

// CreateTask checks a create payload and returns it trimmed. Title,
// description and status must all be present; description may be empty.
func CreateTask(req task.CreateTaskRequest) (task.NewTask, error) {
	var c checker

	if c.required("title", req.Title != nil) {
		c.check("title", *req.Title, tagTitle)
	}

	if c.required("description", req.Description != nil) {
		c.check("description", *req.Description, tagDescription)
	}

	if c.required("status", req.Status != nil) {
		c.check("status", *req.Status, tagStatus)
	}

	if err := c.err(); err != nil {
		return task.NewTask{}, err
	}

	return task.NewTask{
		Title:       strings.TrimSpace(*req.Title),
		Description: strings.TrimSpace(*req.Description),
		Status:      task.Status(*req.Status),
	}, nil
}

// UpdateTask validates only the fields that were sent. Sending none of them
// is task.ErrEmptyUpdate.
func UpdateTask(req task.UpdateTaskRequest) (task.Patch, error) {
	if req.Title == nil && req.Description == nil && req.Status == nil {
		return task.Patch{}, task.ErrEmptyUpdate
	}

	var c checker
	var p task.Patch

	if req.Title != nil && c.check("title", *req.Title, tagTitle) {
		title := strings.TrimSpace(*req.Title)
		p.Title = &title
	}

	if req.Description != nil && c.check("description", *req.Description, tagDescription) {
		desc := strings.TrimSpace(*req.Description)
		p.Description = &desc
	}

	if req.Status != nil && c.check("status", *req.Status, tagStatus) {
		status := task.Status(*req.Status)
		p.Status = &status
	}

	if err := c.err(); err != nil {
		return task.Patch{}, err
	}

	return p, nil
}

// StatusFilter parses the optional ?status= list filter. Empty means no filter.
func StatusFilter(raw string) (task.ListFilter, error) {
	if raw == "" {
		return task.ListFilter{}, nil
	}

	var c checker
	if !c.check("status", raw, tagStatus) {
		return task.ListFilter{}, c.err()
	}

	status := task.Status(raw)
	return task.ListFilter{Status: &status}, nil
}
