// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

// instance is one incarnation of a kernel: a process, its connection
// file, and the sockets connected to it. Restart replaces the
// instance; the Kernel wrapping it survives.
type instance struct {
	info           *jupyter.ConnectionInfo
	connectionFile string

	cmd     *exec.Cmd
	pid     int
	exited  chan struct{}
	waitErr error

	cancel  context.CancelFunc
	sockets [len(jupyter.Channels)]zmq4.Socket
	inboxes [len(jupyter.Channels)]chan *jupyter.Message
	readers sync.WaitGroup

	logger *slog.Logger
}

// startInstance spawns the kernel process and connects its channels.
// It does not wait for readiness.
func (k *Kernel) startInstance(ctx context.Context) (*instance, error) {
	info, err := jupyter.NewConnectionInfo(k.launcher.ip(), k.key, k.spec.Name)
	if err != nil {
		return nil, err
	}
	connectionFile, err := jupyter.WriteConnectionFile(k.launcher.runtimeDirectory(), info)
	if err != nil {
		return nil, err
	}

	argv := k.spec.Command(connectionFile)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = k.workingDirectory
	cmd.Env = mergeEnvironment(os.Environ(), k.spec.Env)
	cmd.Stdout = k.launcher.output()
	cmd.Stderr = k.launcher.output()
	configureProcess(cmd)

	if err := cmd.Start(); err != nil {
		os.Remove(connectionFile)
		return nil, fmt.Errorf("starting kernel %q: %w", k.spec.Name, err)
	}

	socketContext, cancel := context.WithCancel(context.Background())
	inst := &instance{
		info:           info,
		connectionFile: connectionFile,
		cmd:            cmd,
		pid:            cmd.Process.Pid,
		exited:         make(chan struct{}),
		cancel:         cancel,
		logger:         k.launcher.logger().With("kernel", k.spec.Name, "pid", cmd.Process.Pid),
	}

	go func() {
		inst.waitErr = cmd.Wait()
		close(inst.exited)
		k.poke()
	}()

	identity := zmq4.SocketIdentity(k.session.ID)
	for _, channel := range jupyter.Channels {
		var socket zmq4.Socket
		if channel == jupyter.IOPub {
			socket = zmq4.NewSub(socketContext)
		} else {
			socket = zmq4.NewDealer(socketContext, zmq4.WithID(identity))
		}
		inst.sockets[channel] = socket
		inst.inboxes[channel] = make(chan *jupyter.Message, k.launcher.inboxSize())
	}

	if err := inst.dial(ctx, k.launcher); err != nil {
		inst.stop(k.launcher, false)
		return nil, err
	}
	if err := inst.sockets[jupyter.IOPub].SetOption(zmq4.OptionSubscribe, ""); err != nil {
		inst.stop(k.launcher, false)
		return nil, fmt.Errorf("subscribing to iopub: %w", err)
	}

	for _, channel := range jupyter.Channels {
		inst.readers.Add(1)
		go k.read(socketContext, inst, channel)
	}

	inst.logger.Info("kernel process started",
		"connection_file", connectionFile,
		"argv", strings.Join(argv, " "),
	)
	return inst, nil
}

// dial connects every socket, retrying until the kernel has bound its
// ports, the process exits, or ReadyTimeout elapses.
func (inst *instance) dial(ctx context.Context, launcher *Launcher) error {
	deadline := launcher.clock().After(launcher.readyTimeout())
	for _, channel := range jupyter.Channels {
		endpoint := inst.info.Endpoint(channel)
		for {
			err := inst.sockets[channel].Dial(endpoint)
			if err == nil {
				break
			}
			inst.logger.Debug("dial failed, retrying", "channel", channel, "endpoint", endpoint, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-inst.exited:
				return fmt.Errorf("%w: process exited while connecting %s: %v", ErrNotReady, channel, inst.waitErr)
			case <-deadline:
				return fmt.Errorf("%w: connecting %s at %s: %v", ErrNotReady, channel, endpoint, err)
			case <-launcher.clock().After(dialRetryInterval):
			}
		}
	}
	return nil
}

const (
	dialRetryInterval = 100 * time.Millisecond
	killWait          = 5 * time.Second
)

// read decodes frames from one socket into its inbox until the socket
// closes. A full inbox blocks the reader, which leaves the backlog in
// ZeroMQ's queues instead of in memory.
func (k *Kernel) read(ctx context.Context, inst *instance, channel jupyter.Channel) {
	defer inst.readers.Done()
	socket := inst.sockets[channel]
	inbox := inst.inboxes[channel]
	for {
		raw, err := socket.Recv()
		if err != nil {
			if ctx.Err() == nil {
				inst.logger.Debug("channel reader stopped", "channel", channel, "error", err)
			}
			return
		}
		message, err := k.session.Decode(raw.Frames)
		if err != nil {
			inst.logger.Warn("dropping undecodable message", "channel", channel, "error", err)
			continue
		}
		inst.logger.Debug("received",
			"channel", channel,
			"msg_type", message.Type(),
			"parent", message.ParentID(),
		)
		select {
		case inbox <- message:
		case <-ctx.Done():
			return
		}
		k.poke()
	}
}

// send signs and writes a message on channel.
func (inst *instance) send(session *jupyter.Session, channel jupyter.Channel, message *jupyter.Message) error {
	frames, err := session.Encode(message)
	if err != nil {
		return err
	}
	if err := inst.sockets[channel].SendMulti(zmq4.NewMsgFrom(frames...)); err != nil {
		return fmt.Errorf("sending %s on %s: %w", message.Type(), channel, err)
	}
	inst.logger.Debug("sent", "channel", channel, "msg_type", message.Type(), "msg_id", message.Header.MsgID)
	return nil
}

func (inst *instance) running() bool {
	select {
	case <-inst.exited:
		return false
	default:
		return true
	}
}

// stop tears the instance down. With graceful set the caller has
// already asked the kernel to exit, and stop gives it ShutdownGrace to
// do so; the process group is then terminated and killed if still
// present. Failures are logged, never returned.
func (inst *instance) stop(launcher *Launcher, graceful bool) {
	if graceful && inst.running() {
		waitExit(launcher, inst.exited, launcher.ShutdownGrace)
	}
	if inst.running() {
		if err := terminateProcess(inst.pid); err != nil && !errors.Is(err, ErrNotRunning) {
			inst.logger.Warn("terminating kernel failed", "error", err)
		}
		if !waitExit(launcher, inst.exited, launcher.ShutdownGrace) {
			if err := killProcess(inst.pid); err != nil && !errors.Is(err, ErrNotRunning) {
				inst.logger.Warn("killing kernel failed", "error", err)
			}
			if !waitExit(launcher, inst.exited, killWait) {
				inst.logger.Error("kernel process survived SIGKILL", "pid", inst.pid)
			}
		}
	}

	inst.cancel()
	for _, socket := range inst.sockets {
		if socket == nil {
			continue
		}
		if err := socket.Close(); err != nil {
			inst.logger.Debug("closing socket", "error", err)
		}
	}
	inst.readers.Wait()

	if err := os.Remove(inst.connectionFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		inst.logger.Warn("removing connection file failed", "path", inst.connectionFile, "error", err)
	}
	inst.logger.Info("kernel process stopped", "exit", exitDescription(inst.waitErr))
}

// waitExit reports whether exited closed within grace.
func waitExit(launcher *Launcher, exited <-chan struct{}, grace time.Duration) bool {
	if grace <= 0 {
		select {
		case <-exited:
			return true
		default:
			return false
		}
	}
	select {
	case <-exited:
		return true
	case <-launcher.clock().After(grace):
		return false
	}
}

func exitDescription(err error) string {
	if err == nil {
		return "exit status 0"
	}
	return err.Error()
}

// mergeEnvironment overlays the kernelspec env on base. Values may
// reference the inherited environment as $VAR or ${VAR}; unknown
// references are left as written.
func mergeEnvironment(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}
	lookup := make(map[string]string, len(base))
	for _, entry := range base {
		if name, value, ok := strings.Cut(entry, "="); ok {
			lookup[name] = value
		}
	}

	merged := make([]string, 0, len(base)+len(overlay))
	for _, entry := range base {
		name, _, _ := strings.Cut(entry, "=")
		if _, overridden := overlay[name]; !overridden {
			merged = append(merged, entry)
		}
	}
	for name, value := range overlay {
		expanded := os.Expand(value, func(reference string) string {
			if inherited, ok := lookup[reference]; ok {
				return inherited
			}
			return "${" + reference + "}"
		})
		merged = append(merged, name+"="+expanded)
	}
	return merged
}
