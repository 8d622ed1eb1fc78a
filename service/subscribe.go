package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bluesky-social/labeld/stream"
	"github.com/bluesky-social/labeld/stream/eventmgr"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  10 << 10,
	WriteBufferSize: 10 << 10,
}

// GET+websocket /xrpc/com.atproto.label.subscribeLabels
func (s *Service) HandleSubscribeLabels(c echo.Context) error {
	var since *int64
	if sinceVal := c.QueryParam("cursor"); sinceVal != "" {
		sval, err := strconv.ParseInt(sinceVal, 10, 64)
		if err != nil || sval < 0 {
			return invalidRequest("cursor must be a non-negative integer")
		}
		// a zero cursor means live-only, same as no cursor at all
		if sval > 0 {
			since = &sval
		}
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), c.Response().Header())
	if err != nil {
		return fmt.Errorf("upgrading websocket: %w", err)
	}

	defer conn.Close()

	lastWriteLk := sync.Mutex{}
	lastWrite := time.Now()

	// Ping the client every 30 seconds when the stream is otherwise idle.
	// A client that cannot be pinged gets torn down.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				lastWriteLk.Lock()
				lw := lastWrite
				lastWriteLk.Unlock()

				if time.Since(lw) < 30*time.Second {
					continue
				}

				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second)); err != nil {
					s.log.Warn("failed to ping client", "err", err)
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	conn.SetPingHandler(func(message string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second*60))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Temporary() {
			return nil
		}
		return err
	})

	// Read and discard client messages; a read error is the disconnect
	// signal.
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
		}
	}()

	ident := c.RealIP() + "-" + c.Request().UserAgent()

	evts, cleanup, err := s.events.Subscribe(ctx, ident, since)
	if err != nil {
		if errors.Is(err, eventmgr.ErrFutureCursor) {
			return s.writeErrorFrame(conn, ErrNameFutureCursor, "requested cursor is ahead of the stream head")
		}
		s.log.Error("stream subscription failed", "err", err)
		return s.writeErrorFrame(conn, ErrNameInternalFailure, "internal error")
	}
	defer cleanup()

	sentCounter := eventsSentCounter.WithLabelValues(c.RealIP(), c.Request().UserAgent())

	logger := s.log.With(
		"remote_addr", c.RealIP(),
		"user_agent", c.Request().UserAgent(),
	)
	logger.Info("new stream subscriber", "cursor", since)

	for {
		select {
		case evt, ok := <-evts:
			if !ok {
				logger.Info("event stream closed")
				return nil
			}

			wc, err := conn.NextWriter(websocket.BinaryMessage)
			if err != nil {
				logger.Warn("failed to get next writer", "err", err)
				return nil
			}

			if evt.Preserialized != nil {
				_, err = wc.Write(evt.Preserialized)
			} else {
				err = evt.Serialize(wc)
			}
			if err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}

			if err := wc.Close(); err != nil {
				logger.Warn("failed to flush-close event write", "err", err)
				return nil
			}

			if evt.Error != nil {
				// error frames are terminal
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, evt.Error.Error),
					time.Now().Add(5*time.Second))
				return nil
			}

			lastWriteLk.Lock()
			lastWrite = time.Now()
			lastWriteLk.Unlock()
			sentCounter.Inc()
		case <-ctx.Done():
			return nil
		}
	}
}

// writeErrorFrame sends a terminal error frame and closes the stream.
func (s *Service) writeErrorFrame(conn *websocket.Conn, name, message string) error {
	evt := stream.LabelStreamEvent{
		Error: &stream.ErrorFrame{Error: name, Message: message},
	}

	wc, err := conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return nil
	}
	if err := evt.Serialize(wc); err != nil {
		wc.Close()
		return nil
	}
	wc.Close()

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, name),
		time.Now().Add(5*time.Second))
	return nil
}
