//go:build nogui

package voltplot

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
)

// Command used to open an image with the desktop's default viewer.
func viewerCommand(path string) *exec.Cmd {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}
	args = append(args, path)
	return exec.Command(cmd, args...)
}

// DisplayPlot renders p to a temporary PNG and hands it to the platform image
// viewer. The file is left in the temp directory because most openers return
// before the viewer has loaded it.
func DisplayPlot(p *plot.Plot, opts PlotOptions) error {
	f, err := os.CreateTemp("", "voltplot-*.png")
	if err != nil {
		return err
	}

	if err := WriteClosePlot(p, opts, f, "png"); err != nil {
		return err
	}

	logger := logrus.WithFields(logrus.Fields{
		"tag":  "Display",
		"path": f.Name(),
	})

	err = viewerCommand(f.Name()).Run()
	if err != nil {
		logger.WithError(err).Warn("failed to start image viewer")
		return err
	}

	logger.Info("opened figure in image viewer")
	return nil
}
