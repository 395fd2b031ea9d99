package livewire

import (
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/palomar-io/livewire/domain/entities"
)

// handleMessage demultiplexes one inbound server message into bus
// events. Messages are processed serially in arrival order on the
// transport's read goroutine; any panic is contained here so a
// malformed message can never tear down the connection.
func (c *Client) handleMessage(gen uint64, msg *entities.ServerMessage) {
	c.mu.Lock()
	stale := c.gen != gen || c.destroyed
	c.mu.Unlock()
	if stale || msg == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic while handling server message", zap.Any("panic", r))
		}
	}()
	c.demux(msg)
}

// demux classifies msg in fixed order. A message may match several
// categories; tool calls and cancellations end processing since the
// server never mixes them with content.
func (c *Client) demux(msg *entities.ServerMessage) {
	if u := msg.SessionResumptionUpdate; u != nil {
		c.applyResumption(u)
	}

	if g := msg.GoAway; g != nil {
		left := time.Duration(g.TimeLeft)
		c.logger.Warn("server go-away",
			zap.Duration("timeLeft", left),
			zap.String("reason", g.Reason))
		c.emitLog("server.goAway", fmt.Sprintf("connection will close in %s", left))
		c.bus.goAway.emit(entities.GoAwayInfo{TimeLeft: left, Reason: g.Reason})
	}

	if msg.SetupComplete != nil {
		c.logger.Info("setup complete", zap.String("client", c.id))
		c.emitLog("server.setupComplete", "session ready")
		c.bus.setupComplete.emit(struct{}{})
	}

	if tc := msg.ToolCall; tc != nil {
		c.emitLog("server.toolCall", fmt.Sprintf("%d function call(s)", len(tc.FunctionCalls)))
		c.bus.toolCall.emit(tc)
		return
	}

	if tcc := msg.ToolCallCancellation; tcc != nil {
		c.emitLog("server.toolCallCancellation", fmt.Sprintf("%d cancellation(s)", len(tcc.IDs)))
		c.bus.toolCancel.emit(tcc)
		return
	}

	if sc := msg.ServerContent; sc != nil {
		c.demuxContent(sc)
	}
}

func (c *Client) demuxContent(sc *entities.ServerContent) {
	if sc.Interrupted {
		c.emitLog("server.interrupted", "generation interrupted")
		c.bus.interrupted.emit(struct{}{})
	}
	if sc.TurnComplete {
		c.emitLog("server.turnComplete", "turn complete")
		c.bus.turnComplete.emit(struct{}{})
	}
	if sc.GenerationComplete {
		c.emitLog("server.generationComplete", "generation complete")
		c.bus.generationComplete.emit(struct{}{})
	}
	if sc.ModelTurn == nil || len(sc.ModelTurn.Parts) == 0 {
		return
	}

	rest := make([]*entities.Part, 0, len(sc.ModelTurn.Parts))
	for _, p := range sc.ModelTurn.Parts {
		if !p.IsAudio() {
			rest = append(rest, p)
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			// One bad part must not abort its siblings.
			c.logger.Warn("undecodable audio part",
				zap.String("mimeType", p.InlineData.MIMEType),
				zap.Error(err))
			continue
		}
		c.bus.audio.emit(raw)
	}
	if len(rest) > 0 {
		c.bus.content.emit(rest)
	}
}

// applyResumption updates handle ownership per the server's word and
// emits the resumption event regardless.
func (c *Client) applyResumption(u *entities.SessionResumptionUpdate) {
	c.mu.Lock()
	if u.Resumable && u.NewHandle != "" {
		if u.NewHandle != c.handle {
			c.handle = u.NewHandle
			c.persistHandleLocked(u.NewHandle)
		}
		c.resumable = true
	} else if !u.Resumable {
		c.handle = ""
		c.resumable = false
		c.persistHandleLocked("")
	}
	c.mu.Unlock()

	c.logger.Debug("session resumption update",
		zap.Bool("resumable", u.Resumable),
		zap.Bool("newHandle", u.NewHandle != ""))
	c.bus.resumption.emit(entities.ResumptionUpdate{
		Handle:    u.NewHandle,
		Resumable: u.Resumable,
	})
}
