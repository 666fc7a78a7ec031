package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// startCommand is swapped out in tests.
var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// OpenURL hands a media URL off to an external program.
//
// When player is non-empty (e.g. "mpv") it is launched with the URL as its only argument,
// otherwise the platform's default opener is used. Supports macOS, Linux, and Windows platforms.
func OpenURL(url, player string) error {
	if url == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidArgument)
	}

	cmd, err := openCommand(url, player)
	if err != nil {
		return err
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	return nil
}

func openCommand(url, player string) (*exec.Cmd, error) {
	if player != "" {
		return exec.Command(player, url), nil
	}

	rt := getRuntime()
	switch rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}
