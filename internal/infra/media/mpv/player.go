package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/twilight-hud/internal/domain/media"
)

const (
	defaultBinary = "mpv"
	startTimeout  = 5 * time.Second
	replyTimeout  = 5 * time.Second
)

// Player drives an mpv process over its JSON IPC socket. The process is
// started lazily on first use and kept idle between tracks.
type Player struct {
	binary     string
	socketPath string
	logger     *slog.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	exited    chan struct{}
	conn      net.Conn
	reader    *bufio.Reader
	requestID int64
}

// NewPlayer builds a player. An empty binary means an mpv instance is already
// listening on socketPath and will not be spawned.
func NewPlayer(binary, socketPath string, logger *slog.Logger) *Player {
	if strings.TrimSpace(socketPath) == "" {
		socketPath = filepath.Join(os.TempDir(), "twilight-hud-mpv.sock")
	}
	return &Player{
		binary:     strings.TrimSpace(binary),
		socketPath: socketPath,
		logger:     logger.With("component", "media.mpv"),
	}
}

// NewDefaultPlayer uses mpv from PATH.
func NewDefaultPlayer(socketPath string, logger *slog.Logger) *Player {
	return NewPlayer(defaultBinary, socketPath, logger)
}

// Play implements media.Player.
func (p *Player) Play(ctx context.Context, streamURL string) error {
	if err := p.command(ctx, "loadfile", streamURL, "replace"); err != nil {
		return err
	}
	return p.command(ctx, "set_property", "pause", false)
}

// Pause implements media.Player.
func (p *Player) Pause(ctx context.Context) error {
	return p.command(ctx, "set_property", "pause", true)
}

// Resume implements media.Player.
func (p *Player) Resume(ctx context.Context) error {
	return p.command(ctx, "set_property", "pause", false)
}

// Stop implements media.Player.
func (p *Player) Stop(ctx context.Context) error {
	return p.command(ctx, "stop")
}

// Close quits mpv and releases the socket.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
		p.reader = nil
	}
	if p.cmd != nil {
		_ = p.cmd.Process.Kill()
		<-p.exited
		p.cmd = nil
	}
	return nil
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type reply struct {
	Error     string `json:"error"`
	RequestID *int64 `json:"request_id"`
	Event     string `json:"event"`
}

func (p *Player) command(ctx context.Context, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(ctx); err != nil {
		return err
	}
	p.requestID++
	id := p.requestID
	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return fmt.Errorf("encode mpv command: %w", err)
	}

	deadline := time.Now().Add(replyTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = p.conn.SetDeadline(deadline)
	if _, err := p.conn.Write(append(payload, '\n')); err != nil {
		p.dropConnLocked()
		return fmt.Errorf("write mpv command: %w", err)
	}

	for {
		line, err := p.reader.ReadBytes('\n')
		if err != nil {
			p.dropConnLocked()
			return fmt.Errorf("read mpv reply: %w", err)
		}
		var r reply
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		if r.Event != "" {
			p.logger.Debug("mpv event", "event", r.Event)
			continue
		}
		if r.RequestID == nil || *r.RequestID != id {
			continue
		}
		if r.Error != "success" {
			return fmt.Errorf("mpv %v: %s", args[0], r.Error)
		}
		return nil
	}
}

func (p *Player) ensureConnected(ctx context.Context) error {
	if p.conn != nil {
		return nil
	}
	if p.binary != "" && !p.runningLocked() {
		if err := p.spawnLocked(); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(startTimeout)
	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "unix", p.socketPath)
		if err == nil {
			p.conn = conn
			p.reader = bufio.NewReader(conn)
			return nil
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			return fmt.Errorf("connect mpv ipc %s: %w", p.socketPath, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (p *Player) spawnLocked() error {
	_ = os.Remove(p.socketPath)
	cmd := exec.Command(p.binary,
		"--no-video",
		"--idle=yes",
		"--no-terminal",
		"--input-ipc-server="+p.socketPath,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	exited := make(chan struct{})
	p.cmd = cmd
	p.exited = exited
	p.logger.Info("mpv started", "pid", cmd.Process.Pid, "socket", p.socketPath)
	go func() {
		defer close(exited)
		if err := cmd.Wait(); err != nil {
			p.logger.Warn("mpv exited", "error", err)
		}
	}()
	return nil
}

func (p *Player) runningLocked() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

func (p *Player) dropConnLocked() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn = nil
	p.reader = nil
}

var _ media.Player = (*Player)(nil)
