package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
	log "github.com/sirupsen/logrus"
)

// RegistrationError reports a failed login-item operation. The prior
// registration state is left unchanged when it occurs.
type RegistrationError struct {
	Op  string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("login item %s failed: %v", e.Op, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// LoginItem registers the running executable to launch at login.
type LoginItem struct {
	app *autostart.App
}

// NewLoginItem resolves the current executable and prepares a login
// item for it.
func NewLoginItem(name, displayName string) (*LoginItem, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, &RegistrationError{Op: "resolve executable", Err: err}
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, &RegistrationError{Op: "resolve executable", Err: err}
	}

	return &LoginItem{
		app: &autostart.App{
			Name:        name,
			DisplayName: displayName,
			Exec:        []string{execPath},
		},
	}, nil
}

// Enabled reports whether the login item is currently registered.
func (li *LoginItem) Enabled() bool {
	return li.app.IsEnabled()
}

// Register enables launch at login.
func (li *LoginItem) Register() error {
	if li.app.IsEnabled() {
		return nil
	}
	if err := li.app.Enable(); err != nil {
		return &RegistrationError{Op: "register", Err: err}
	}
	log.Info("Login item registered")
	return nil
}

// Unregister disables launch at login.
func (li *LoginItem) Unregister() error {
	if !li.app.IsEnabled() {
		return nil
	}
	if err := li.app.Disable(); err != nil {
		return &RegistrationError{Op: "unregister", Err: err}
	}
	log.Info("Login item unregistered")
	return nil
}

// Apply reconciles the registration with the desired state.
func (li *LoginItem) Apply(enable bool) error {
	if enable {
		return li.Register()
	}
	return li.Unregister()
}
