// package notify delivers desktop notifications through the platform's notification tool
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/repositories"
	"github.com/desertthunder/tvtrack/internal/shared"
)

const appName = "tvtrack"

// Permission decisions stored in preferences.
const (
	Granted = "granted"
	Denied  = "denied"
)

// Notifier shows a notification outside the terminal.
type Notifier interface {
	// Permission reports whether notifications can be delivered on this system.
	Permission(ctx context.Context) bool

	// Notify shows a notification with title and body. icon may be empty.
	Notify(ctx context.Context, title, body, icon string) error
}

// PreferenceStore persists the permission decision.
type PreferenceStore interface {
	Get(key, fallback string) (string, error)
	Set(key, value string) error
}

// DesktopNotifier implements [Notifier] with notify-send, osascript or a PowerShell toast.
type DesktopNotifier struct {
	goos     string
	lookPath func(string) (string, error)
	logger   *log.Logger
}

// NewDesktopNotifier creates a notifier for the current platform.
func NewDesktopNotifier(logger *log.Logger) *DesktopNotifier {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DesktopNotifier{goos: runtime.GOOS, lookPath: exec.LookPath, logger: logger}
}

// Permission reports whether the platform notification tool is installed.
func (d *DesktopNotifier) Permission(ctx context.Context) bool {
	bin, err := binary(d.goos)
	if err != nil {
		return false
	}
	_, err = d.lookPath(bin)
	return err == nil
}

// Notify runs the platform notification tool and waits for it to exit.
func (d *DesktopNotifier) Notify(ctx context.Context, title, body, icon string) error {
	cmd, err := command(ctx, d.goos, title, body, icon)
	if err != nil {
		return err
	}

	d.logger.Debug("sending desktop notification", "title", title, "tool", cmd.Path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: notification failed: %v: %s", shared.ErrServiceUnavailable, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Disabled is a [Notifier] that never delivers anything.
type Disabled struct{}

func (Disabled) Permission(context.Context) bool { return false }

func (Disabled) Notify(context.Context, string, string, string) error { return nil }

// RequestPermission returns the stored permission decision, probing n and storing the result when none exists.
func RequestPermission(ctx context.Context, n Notifier, prefs PreferenceStore) (bool, error) {
	stored, err := prefs.Get(repositories.PrefNotification, "")
	if err != nil {
		return false, err
	}

	switch stored {
	case Granted:
		return true, nil
	case Denied:
		return false, nil
	}

	decision := Denied
	if n.Permission(ctx) {
		decision = Granted
	}
	if err := prefs.Set(repositories.PrefNotification, decision); err != nil {
		return decision == Granted, err
	}
	return decision == Granted, nil
}

func binary(goos string) (string, error) {
	switch goos {
	case "darwin":
		return "osascript", nil
	case "linux", "freebsd", "openbsd":
		return "notify-send", nil
	case "windows":
		return "powershell", nil
	default:
		return "", fmt.Errorf("%w: notifications unsupported on %s", shared.ErrServiceUnavailable, goos)
	}
}

// command returns the command that shows a notification on the given platform.
func command(ctx context.Context, goos, title, body, icon string) (*exec.Cmd, error) {
	bin, err := binary(goos)
	if err != nil {
		return nil, err
	}

	switch goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptString(body), appleScriptString(title))
		return exec.CommandContext(ctx, bin, "-e", script), nil
	case "windows":
		return exec.CommandContext(ctx, bin, "-NoProfile", "-NonInteractive", "-Command", toastScript(title, body)), nil
	default:
		args := []string{"--app-name", appName}
		// notify-send only understands local paths and icon names
		if icon != "" && !strings.HasPrefix(icon, "http://") && !strings.HasPrefix(icon, "https://") {
			args = append(args, "--icon", icon)
		}
		args = append(args, title, body)
		return exec.CommandContext(ctx, bin, args...), nil
	}
}

func appleScriptString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func powerShellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func toastScript(title, body string) string {
	return strings.Join([]string{
		"[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] > $null",
		"$t = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)",
		"$x = $t.GetElementsByTagName('text')",
		"$x.Item(0).AppendChild($t.CreateTextNode(" + powerShellString(title) + ")) > $null",
		"$x.Item(1).AppendChild($t.CreateTextNode(" + powerShellString(body) + ")) > $null",
		"[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(" + powerShellString(appName) + ").Show([Windows.UI.Notifications.ToastNotification]::new($t))",
	}, "; ")
}
