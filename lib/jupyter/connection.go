// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// ConnectionInfo is the content of a kernel connection file. The
// kernel binds its sockets to these ports; the client dials them.
type ConnectionInfo struct {
	IP              string `json:"ip"`
	Transport       string `json:"transport"`
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HeartbeatPort   int    `json:"hb_port"`
	Key             string `json:"key"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name,omitempty"`
}

// Endpoint returns the ZeroMQ endpoint for channel, for example
// "tcp://127.0.0.1:53794".
func (c *ConnectionInfo) Endpoint(channel Channel) string {
	var port int
	switch channel {
	case IOPub:
		port = c.IOPubPort
	case Shell:
		port = c.ShellPort
	case Control:
		port = c.ControlPort
	case Stdin:
		port = c.StdinPort
	}
	return fmt.Sprintf("%s://%s:%d", c.Transport, c.IP, port)
}

// NewConnectionInfo allocates five free TCP ports on ip and returns
// connection info signed with key. The ports are released before
// returning so the kernel can bind them; another process could take
// one in the meantime, which surfaces as a kernel startup failure.
func NewConnectionInfo(ip, key, kernelName string) (*ConnectionInfo, error) {
	ports, err := freePorts(ip, 5)
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{
		IP:              ip,
		Transport:       "tcp",
		ShellPort:       ports[0],
		IOPubPort:       ports[1],
		StdinPort:       ports[2],
		ControlPort:     ports[3],
		HeartbeatPort:   ports[4],
		Key:             key,
		SignatureScheme: "hmac-sha256",
		KernelName:      kernelName,
	}, nil
}

// freePorts holds every listener open until all ports are chosen so
// the same port is never returned twice.
func freePorts(ip string, count int) ([]int, error) {
	listeners := make([]net.Listener, 0, count)
	defer func() {
		for _, listener := range listeners {
			listener.Close()
		}
	}()

	ports := make([]int, 0, count)
	for i := 0; i < count; i++ {
		listener, err := net.Listen("tcp", net.JoinHostPort(ip, "0"))
		if err != nil {
			return nil, fmt.Errorf("allocating port on %s: %w", ip, err)
		}
		listeners = append(listeners, listener)
		ports = append(ports, listener.Addr().(*net.TCPAddr).Port)
	}
	return ports, nil
}

// WriteConnectionFile writes info to a new file in directory with
// mode 0600 and returns its path. The file holds the signing key, so
// it must not be readable by other users.
func WriteConnectionFile(directory string, info *ConnectionInfo) (string, error) {
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return "", fmt.Errorf("creating runtime directory: %w", err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding connection info: %w", err)
	}

	// CreateTemp opens with 0600.
	file, err := os.CreateTemp(directory, "kernel-*.json")
	if err != nil {
		return "", fmt.Errorf("creating connection file: %w", err)
	}
	path := file.Name()
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing connection file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing connection file: %w", err)
	}
	return filepath.Clean(path), nil
}

// ReadConnectionFile parses a connection file written by
// WriteConnectionFile or by another Jupyter client.
func ReadConnectionFile(path string) (*ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading connection file: %w", err)
	}
	var info ConnectionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing connection file %s: %w", path, err)
	}
	return &info, nil
}
