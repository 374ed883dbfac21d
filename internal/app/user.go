package app

import (
	"fmt"
	"strings"

	"myanalyst/pkg/domain"
)

const maxCredentialLen = 20

// Register creates a new user account.
func (a *App) Register(id, password string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		return domain.User{}, fmt.Errorf("user id and password required")
	}
	if len(id) > maxCredentialLen || len(password) > maxCredentialLen {
		return domain.User{}, fmt.Errorf("user id and password must be at most %d characters", maxCredentialLen)
	}
	exists, err := a.store.HasUser(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return domain.User{}, ErrUserExists
	}
	user := domain.User{ID: id, Password: password}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login checks credentials by plain equality. There is no session state;
// success simply reports that the pair matches.
func (a *App) Login(id, password string) error {
	user, ok, err := a.store.GetUser(id)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	if user.Password != password {
		return ErrInvalidCredential
	}
	return nil
}

// DeleteUser removes a user. The store cascades deletion of the user's
// reports, which removes their chats and detaches their glossary terms.
func (a *App) DeleteUser(id string) error {
	ok, err := a.store.HasUser(id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	if err := a.store.DeleteUser(id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
