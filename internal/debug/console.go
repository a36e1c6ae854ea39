package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"golang.org/x/term"

	"github.com/Versifine/capsule/internal/input"
	"github.com/Versifine/capsule/internal/mathutil"
	"github.com/Versifine/capsule/internal/sim"
)

const (
	defaultFrameInterval = time.Second / 60
	defaultMovePulse     = 180 * time.Millisecond
	defaultJumpPulse     = 100 * time.Millisecond
	// lookStep is in look units; at the default sensitivity it is about 5 degrees.
	lookStep = 45.0
)

// Stepper advances the simulation by one variable-length frame.
type Stepper interface {
	Frame(intent input.Intent, frameDT float64) sim.FrameResult
}

// Character is the rig the console reports on and commands.
type Character interface {
	Status() sim.Status
	Teleport(pos r3.Vec)
	Respawn()
}

type Console struct {
	stepper       Stepper
	character     Character
	frameInterval time.Duration
	movePulse     time.Duration
	out           io.Writer

	// simMu serializes frames with commands issued from the key reader.
	simMu sync.Mutex

	mu            sync.Mutex
	intent        input.Intent
	lookPending   input.Vec2
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	jumpUntil     time.Time
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
}

func NewConsole(stepper Stepper, character Character, frameInterval time.Duration) *Console {
	if frameInterval <= 0 {
		frameInterval = defaultFrameInterval
	}
	return &Console{
		stepper:       stepper,
		character:     character,
		frameInterval: frameInterval,
		movePulse:     defaultMovePulse,
		out:           os.Stdout,
	}
}

// Start puts the terminal in raw mode and runs until q is pressed or ctx ends.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.stepper == nil {
		return fmt.Errorf("console stepper is nil")
	}
	if c.character == nil {
		return fmt.Errorf("console character is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, Space jump, C crouch, ] sprint, arrows look, : command, q quit)\r\n")
	c.renderStatusLine()

	go c.frameLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if quit := c.handleKey(reader, b); quit {
			return nil
		}
	}
}

func (c *Console) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(c.frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			c.step(now, dt)
			c.renderStatusLine()
		}
	}
}

func (c *Console) step(now time.Time, dt float64) sim.FrameResult {
	intent := c.takeIntent(now)
	c.simMu.Lock()
	defer c.simMu.Unlock()
	res := c.stepper.Frame(intent, dt)
	if res.Dropped > 0 {
		slog.Debug("debug frame dropped physics time", "seconds", res.Dropped)
	}
	return res
}

// handleKey applies one key press and reports whether the console should quit.
func (c *Console) handleKey(reader *bufio.Reader, b byte) bool {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return false
	}

	now := time.Now()
	switch b {
	case 'q', 'Q', 3: // q or Ctrl-C
		return true
	case ':':
		c.enterCommandMode()
		return false
	case 'w', 'W':
		c.pulseMove(now, 0, -1)
	case 's', 'S':
		c.pulseMove(now, 0, 1)
	case 'a', 'A':
		c.pulseMove(now, -1, 0)
	case 'd', 'D':
		c.pulseMove(now, 1, 0)
	case ' ':
		c.pulseJump(now)
	case 'c', 'C':
		c.toggleCrouch()
	case ']':
		c.toggleSprint()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return false
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return false
		}
		switch arrow {
		case 'D': // left
			c.addLook(-lookStep, 0)
		case 'C': // right
			c.addLook(lookStep, 0)
		case 'A': // up
			c.addLook(0, -lookStep)
		case 'B': // down
			c.addLook(0, lookStep)
		}
	}
	c.renderStatusLine()
	return false
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		st := c.status()
		fmt.Fprintf(c.out, "[debug] pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) ground=%t crouched=%t target=%t h=%.3f\r\n",
			st.Position.X, st.Position.Y, st.Position.Z,
			st.Velocity.X, st.Velocity.Y, st.Velocity.Z,
			st.Grounded, st.Crouched, st.TargetCrouched, st.HalfHeight,
		)
	case "tp":
		if len(parts) != 4 {
			fmt.Fprintf(c.out, "[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintf(c.out, "[debug] invalid tp args\r\n")
			return
		}
		c.simMu.Lock()
		c.character.Teleport(r3.Vec{X: x, Y: y, Z: z})
		c.simMu.Unlock()
		fmt.Fprintf(c.out, "[debug] teleported to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "respawn":
		c.simMu.Lock()
		c.character.Respawn()
		c.simMu.Unlock()
		fmt.Fprintf(c.out, "[debug] respawned\r\n")
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: jump\r\n")
	fmt.Fprint(c.out, "  C: toggle crouch\r\n")
	fmt.Fprint(c.out, "  ]: toggle sprint\r\n")
	fmt.Fprint(c.out, "  Arrow Left/Right/Up/Down: look\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  Q: quit\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :respawn\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) status() sim.Status {
	c.simMu.Lock()
	defer c.simMu.Unlock()
	return c.character.Status()
}

func (c *Console) statusLine() string {
	c.mu.Lock()
	in := c.intent
	c.mu.Unlock()

	st := c.status()
	return fmt.Sprintf(
		"[MOV:%+.0f,%+.0f SPR:%s CRH:%s | X:%.2f Y:%.2f Z:%.2f | V:%.2f,%.2f,%.2f | ground:%t crouched:%t h:%.2f | body:%.1f head:%.1f]",
		in.Move.X, in.Move.Y,
		boolLabel(in.Sprint),
		boolLabel(in.Crouch),
		st.Position.X, st.Position.Y, st.Position.Z,
		st.Velocity.X, st.Velocity.Y, st.Velocity.Z,
		st.Grounded, st.Crouched, st.HalfHeight,
		mathutil.RadToDeg(st.BodyYaw),
		mathutil.RadToDeg(st.HeadYaw),
	)
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	width := c.statusWidth
	c.mu.Unlock()

	line := c.statusLine()
	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

// takeIntent expires finished pulses and hands out the intent for one frame.
// The accumulated look delta is consumed.
func (c *Console) takeIntent(now time.Time) input.Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPulsesLocked(now)
	in := c.intent
	in.Look = c.lookPending
	c.lookPending = input.Vec2{}
	return in
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// pulseMove holds one axis of the move vector for movePulse. Pressing the
// opposite key cancels the current pulse on that axis.
func (c *Console) pulseMove(now time.Time, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	until := now.Add(c.movePulse)
	switch {
	case y < 0:
		c.intent.Move.Y = -1
		c.forwardUntil, c.backwardUntil = until, time.Time{}
	case y > 0:
		c.intent.Move.Y = 1
		c.backwardUntil, c.forwardUntil = until, time.Time{}
	case x < 0:
		c.intent.Move.X = -1
		c.leftUntil, c.rightUntil = until, time.Time{}
	case x > 0:
		c.intent.Move.X = 1
		c.rightUntil, c.leftUntil = until, time.Time{}
	}
}

func (c *Console) pulseJump(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intent.Jump = true
	c.jumpUntil = now.Add(defaultJumpPulse)
}

func (c *Console) addLook(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookPending.X += dx
	c.lookPending.Y += dy
}

func expired(until, now time.Time) bool {
	return !until.IsZero() && !now.Before(until)
}

func (c *Console) applyPulsesLocked(now time.Time) {
	if expired(c.forwardUntil, now) {
		c.intent.Move.Y = 0
		c.forwardUntil = time.Time{}
	}
	if expired(c.backwardUntil, now) {
		c.intent.Move.Y = 0
		c.backwardUntil = time.Time{}
	}
	if expired(c.leftUntil, now) {
		c.intent.Move.X = 0
		c.leftUntil = time.Time{}
	}
	if expired(c.rightUntil, now) {
		c.intent.Move.X = 0
		c.rightUntil = time.Time{}
	}
	if expired(c.jumpUntil, now) {
		c.intent.Jump = false
		c.jumpUntil = time.Time{}
	}
}

func (c *Console) toggleCrouch() {
	c.mu.Lock()
	c.intent.Crouch = !c.intent.Crouch
	enabled := c.intent.Crouch
	c.mu.Unlock()
	slog.Debug("debug crouch toggled", "enabled", enabled)
}

func (c *Console) toggleSprint() {
	c.mu.Lock()
	c.intent.Sprint = !c.intent.Sprint
	enabled := c.intent.Sprint
	c.mu.Unlock()
	slog.Debug("debug sprint toggled", "enabled", enabled)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.intent = input.Intent{}
	c.lookPending = input.Vec2{}
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.jumpUntil = time.Time{}
	c.mu.Unlock()
}
