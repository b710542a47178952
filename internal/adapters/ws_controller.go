package adapters

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/verock/streamcast/internal/app"
	"github.com/verock/streamcast/internal/config"
	"github.com/verock/streamcast/internal/core"
	"github.com/verock/streamcast/internal/domain"
	"github.com/verock/streamcast/internal/library"
	"github.com/verock/streamcast/internal/protocol"
	"github.com/verock/streamcast/internal/vod"
)

// EventController terminates the websocket event channel and dispatches
// inbound events to the orchestrator, library and VOD streamer.
type EventController struct {
	Orch    *app.Orchestrator
	Library *library.Library
	Cfg     *config.Config
}

var upgrader = websocket.Upgrader{
	// The event channel accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *EventController) HandleEvents(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "adapters.ws").Err(err).Msg("websocket upgrade failed")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := NewWSConnection(ws, ctl.Cfg.SendBuffer, ctl.Cfg.PingPeriod)
	connCtx, cancel := context.WithCancel(ctx)
	id := ctl.Orch.OnConnect(conn, cancel)
	log.Info().Str("module", "adapters.ws").Str("client", string(id)).Msg("client connected")

	conn.StartWriteLoop(connCtx)
	go ctl.readPump(connCtx, id, conn)
}

func (ctl *EventController) readPump(ctx context.Context, id domain.ClientID, conn *WSConnection) {
	defer func() {
		log.Info().Str("module", "adapters.ws").Str("client", string(id)).Msg("client disconnected")
		ctl.Orch.OnDisconnect(id)
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatch(ctx, id, conn, data)
		}
	}
}

func (ctl *EventController) dispatch(ctx context.Context, id domain.ClientID, conn *WSConnection, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Str("module", "adapters.ws").Str("client", string(id)).Err(err).Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(id, data)
	case protocol.TypeLeaveRoom:
		ctl.handleLeave(id, data)
	case protocol.TypeRegisterStreamer:
		ctl.handleRegisterStreamer(data)
	case protocol.TypeInitSegment:
		ctl.handleMedia(id, data, true)
	case protocol.TypeMediaChunk:
		ctl.handleMedia(id, data, false)
	case protocol.TypeStreamEnd:
		ctl.handleStreamEnd(data)
	case protocol.TypeListVideos:
		ctl.handleListVideos(conn)
	case protocol.TypeWatch:
		ctl.handleWatch(ctx, id, conn, data)
	case protocol.TypeListStreamers:
		ctl.handleListStreamers(conn)
	default:
		log.Warn().Str("module", "adapters.ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *EventController) handleJoin(id domain.ClientID, data []byte) {
	var p protocol.RoomEvent
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Warn().Str("module", "adapters.ws").Str("client", string(id)).Msg("bad join payload")
		return
	}
	ctl.Orch.Join(id, domain.RoomKey(p.Room))
}

func (ctl *EventController) handleLeave(id domain.ClientID, data []byte) {
	var p protocol.RoomEvent
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		return
	}
	ctl.Orch.Leave(id, domain.RoomKey(p.Room))
}

func (ctl *EventController) handleRegisterStreamer(data []byte) {
	var p protocol.StreamerEvent
	if err := json.Unmarshal(data, &p); err != nil || p.Name == "" {
		return
	}
	ctl.Orch.RegisterStreamer(p.Name)
}

func (ctl *EventController) handleMedia(id domain.ClientID, data []byte, isInit bool) {
	var p protocol.MediaEvent
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "adapters.ws").Str("client", string(id)).Err(err).Msg("bad media payload")
		return
	}
	if isInit {
		ctl.Orch.RelayInit(id, domain.RoomKey(p.Room), core.Frame(p.Data))
		return
	}
	ctl.Orch.RelayChunk(id, domain.RoomKey(p.Room), core.Frame(p.Data))
}

func (ctl *EventController) handleStreamEnd(data []byte) {
	var p protocol.RoomEvent
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		return
	}
	ctl.Orch.EndStream(domain.RoomKey(p.Room))
}

func (ctl *EventController) handleListVideos(conn *WSConnection) {
	resp := struct {
		Type   string          `json:"type"`
		Videos []library.Video `json:"videos"`
	}{
		Type:   protocol.TypeVideoList,
		Videos: ctl.Library.List(),
	}
	_ = conn.TrySend(protocol.Encode(resp))
}

func (ctl *EventController) handleListStreamers(conn *WSConnection) {
	_ = conn.TrySend(protocol.Encode(protocol.LiveStreamers{
		Type:      protocol.TypeLiveStreamers,
		Streamers: ctl.Orch.LiveStreamers(),
	}))
}

func (ctl *EventController) handleWatch(ctx context.Context, id domain.ClientID, conn *WSConnection, data []byte) {
	var p protocol.WatchRequest
	if err := json.Unmarshal(data, &p); err != nil || p.Video == "" {
		log.Warn().Str("module", "adapters.ws").Str("client", string(id)).Msg("bad watch payload")
		return
	}
	log.Info().Str("module", "adapters.ws").Str("client", string(id)).Str("video", p.Video).Msg("watch requested")

	t := vod.NewTransfer(ctl.Library.Dir(), p.Video)
	go func() {
		state := t.Run(ctx, &vodSink{conn: conn})
		ctl.Orch.Metrics.IncVODTransfers(state.String())
	}()
}

// vodSink emits VOD transfer events to the one requesting connection.
type vodSink struct {
	conn *WSConnection
}

func (s *vodSink) OnMeta(name string, size int64) {
	_ = s.conn.TrySend(protocol.Encode(protocol.VideoMeta{Type: protocol.TypeVideoMeta, Name: name, Size: size}))
}

func (s *vodSink) OnChunk(data []byte) {
	_ = s.conn.TrySend(protocol.Encode(protocol.VideoChunk{Type: protocol.TypeVideoChunk, Data: data}))
}

func (s *vodSink) OnEnd() {
	_ = s.conn.TrySend(protocol.Encode(protocol.Envelope{Type: protocol.TypeVideoEnd}))
}

func (s *vodSink) OnError(message string) {
	_ = s.conn.TrySend(protocol.Encode(protocol.VideoError{Type: protocol.TypeVideoError, Message: message}))
}
