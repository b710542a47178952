// Package vod delivers a pre-recorded media file to a single requesting
// connection in fixed-size chunks, modeled as an explicit state machine
// so cancellation and error paths stay exhaustive.
package vod

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// DefaultChunkSize is the fixed read size per emitted chunk.
const DefaultChunkSize = 1 << 20 // 1 MiB

// State of a transfer. Completed, Failed and Aborted are terminal.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateStreaming
	StateCompleted
	StateFailed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

var errOutsideMediaDir = errors.New("path escapes media directory")

// Sink receives transfer events. All methods are called from the
// transfer's own goroutine, in order: OnMeta once, then OnChunk zero or
// more times, then exactly one of OnEnd/OnError — or OnError alone when
// validation fails. Nothing is emitted after an abort.
type Sink interface {
	OnMeta(name string, size int64)
	OnChunk(data []byte)
	OnEnd()
	OnError(message string)
}

// Transfer is one (connection, file) delivery. Ephemeral: created per
// watch request, gone once it reaches a terminal state.
type Transfer struct {
	dir       string
	name      string
	chunkSize int
	state     atomic.Int32
}

func NewTransfer(dir, name string) *Transfer {
	return &Transfer{dir: dir, name: name, chunkSize: DefaultChunkSize}
}

func (t *Transfer) State() State { return State(t.state.Load()) }

func (t *Transfer) setState(s State) { t.state.Store(int32(s)) }

// resolve rejects names that would escape the media directory; callers
// see the same not-found error as for a missing file.
func (t *Transfer) resolve() (string, error) {
	name := filepath.Clean(t.name)
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", errOutsideMediaDir
	}
	return filepath.Join(t.dir, name), nil
}

// Run drives the transfer to a terminal state. It blocks until done;
// callers start it on its own goroutine. ctx is the owning connection's
// context: cancellation aborts the transfer mid-read and suppresses all
// further events, including the end notification.
func (t *Transfer) Run(ctx context.Context, sink Sink) State {
	t.setState(StateValidating)

	path, err := t.resolve()
	if err == nil {
		_, err = os.Stat(path)
	}
	if err != nil {
		log.Warn().Str("module", "vod").Str("video", t.name).Err(err).Msg("watch request for unavailable file")
		t.setState(StateFailed)
		sink.OnError("Video not found.")
		return StateFailed
	}

	f, err := os.Open(path)
	if err != nil {
		t.setState(StateFailed)
		sink.OnError("Error reading video.")
		return StateFailed
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.setState(StateFailed)
		sink.OnError("Error reading video.")
		return StateFailed
	}

	t.setState(StateStreaming)
	sink.OnMeta(t.name, info.Size())

	buf := make([]byte, t.chunkSize)
	for {
		if ctx.Err() != nil {
			log.Info().Str("module", "vod").Str("video", t.name).Msg("transfer aborted")
			t.setState(StateAborted)
			return StateAborted
		}
		n, err := f.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if ctx.Err() != nil {
				t.setState(StateAborted)
				return StateAborted
			}
			sink.OnChunk(chunk)
		}
		if err == io.EOF {
			t.setState(StateCompleted)
			sink.OnEnd()
			log.Info().Str("module", "vod").Str("video", t.name).Int64("size", info.Size()).Msg("transfer completed")
			return StateCompleted
		}
		if err != nil {
			log.Error().Str("module", "vod").Str("video", t.name).Err(err).Msg("transfer read error")
			t.setState(StateFailed)
			sink.OnError("Error reading video.")
			return StateFailed
		}
	}
}
