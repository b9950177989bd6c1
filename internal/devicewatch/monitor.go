// Package devicewatch triggers device synchronization when a block device
// appears, so plugging in a player mirrors the library onto it.
package devicewatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"syphon/internal/logging"
)

// DefaultSettle is how long the monitor waits after the last add event
// before syncing, giving the automounter time to mount the device.
const DefaultSettle = 5 * time.Second

// Trigger runs a device synchronization.
type Trigger func(ctx context.Context) error

// Monitor listens for udev block device add events.
type Monitor struct {
	logger  *slog.Logger
	trigger Trigger
	settle  time.Duration
}

// New creates a monitor that calls trigger once events have settled.
func New(logger *slog.Logger, trigger Trigger, settle time.Duration) *Monitor {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Monitor{
		logger:  logging.NewComponentLogger(logger, "device-watch"),
		trigger: trigger,
		settle:  settle,
	}
}

// Run connects to the udev netlink socket and blocks until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return fmt.Errorf("connect udev netlink: %w", err)
	}
	defer conn.Close()

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	quit := conn.Monitor(queue, errs, Matcher())
	defer close(quit)

	m.logger.Info("device watch started",
		logging.String(logging.FieldEventType, "device_watch_started"),
		logging.Duration("settle", m.settle),
	)
	m.loop(ctx, queue, errs)
	return nil
}

// Matcher accepts add events for block disks and partitions.
func Matcher() netlink.Matcher {
	action := "add"
	rules := &netlink.RuleDefinitions{}
	for _, devtype := range []string{"disk", "partition"} {
		rules.AddRule(netlink.RuleDefinition{
			Action: &action,
			Env: map[string]string{
				"SUBSYSTEM": "block",
				"DEVTYPE":   devtype,
			},
		})
	}
	return rules
}

func (m *Monitor) loop(ctx context.Context, queue <-chan netlink.UEvent, errs <-chan error) {
	timer := time.NewTimer(m.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case uevent := <-queue:
			if m.accept(uevent) {
				timer.Reset(m.settle)
			}
		case err := <-errs:
			m.logger.Warn("udev monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "device_watch_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device insertion may be missed"),
			)
		case <-timer.C:
			m.fire(ctx)
		}
	}
}

func (m *Monitor) accept(uevent netlink.UEvent) bool {
	name := DeviceName(uevent)
	if name == "" {
		m.logger.Debug("ignoring event without device name", logging.String("kobj", uevent.KObj))
		return false
	}
	m.logger.Info("block device added",
		logging.String(logging.FieldEventType, "device_added"),
		logging.String("device", name),
	)
	return true
}

func (m *Monitor) fire(ctx context.Context) {
	if m.trigger == nil {
		return
	}
	if err := m.trigger(ctx); err != nil {
		m.logger.Warn("device sync after insertion failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "device_watch_sync_failed"),
			logging.String(logging.FieldErrorHint, "run syphon run --only devices for details"),
			logging.String(logging.FieldImpact, "device not updated until the next run"),
		)
	}
}

// DeviceName returns the device node of a uevent.
func DeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/") {
			devname = "/dev/" + devname
		}
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
