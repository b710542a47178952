// Package protocol defines the JSON event envelope exchanged on the
// websocket channel. Binary payloads ride as base64 through Go's
// standard []byte JSON encoding.
package protocol

import "encoding/json"

// Client -> server event types.
const (
	TypeJoinRoom         = "join_room"
	TypeLeaveRoom        = "leave_room"
	TypeRegisterStreamer = "register_streamer"
	TypeInitSegment      = "init_segment"
	TypeMediaChunk       = "media_chunk"
	TypeStreamEnd        = "stream_end"
	TypeListVideos       = "list_videos"
	TypeWatch            = "watch"
	TypeListStreamers    = "list_streamers"
)

// Server -> client event types. Init segments and media chunks reuse
// the inbound names for both replay-on-join and relay.
const (
	TypeRoomUpdate    = "room_update"
	TypeVideoList     = "video_list"
	TypeLiveStreamers = "live_streamers"
	TypeVideoMeta     = "video_meta"
	TypeVideoChunk    = "video_chunk"
	TypeVideoEnd      = "video_end"
	TypeVideoError    = "video_error"
)

// Envelope carries just the discriminator for dispatch.
type Envelope struct {
	Type string `json:"type"`
}

type RoomEvent struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type MediaEvent struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data []byte `json:"data"`
}

type StreamerEvent struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type RoomUpdate struct {
	Type         string `json:"type"`
	Room         string `json:"room"`
	Participants int    `json:"participants"`
}

type WatchRequest struct {
	Type  string `json:"type"`
	Video string `json:"video"`
}

type VideoMeta struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type VideoChunk struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

type VideoError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type LiveStreamers struct {
	Type      string   `json:"type"`
	Streamers []string `json:"streamers"`
}

// Encode marshals an event, panicking on programmer error: every event
// struct above is marshalable by construction.
func Encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic("protocol: unmarshalable event: " + err.Error())
	}
	return b
}

func NewMediaEvent(typ, room string, data []byte) []byte {
	return Encode(MediaEvent{Type: typ, Room: room, Data: data})
}

func NewRoomUpdate(room string, participants int) []byte {
	return Encode(RoomUpdate{Type: TypeRoomUpdate, Room: room, Participants: participants})
}
