package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sioled/sioled/internal/light"
	"github.com/sioled/sioled/internal/nct6795d"
	"github.com/sioled/sioled/internal/superio"
)

// State exposes one light controller over HTTP: a /control websocket
// for brightness changes and a /health endpoint for status.
type State struct {
	mu        sync.Mutex
	ctrl      *light.Controller
	startTime time.Time

	Device  string
	Port    uint16
	Variant string
}

func NewState(ctrl *light.Controller, device string, port uint16, variant string) *State {
	return &State{
		ctrl:      ctrl,
		startTime: time.Now(),
		Device:    device,
		Port:      port,
		Variant:   variant,
	}
}

// Status is the JSON shape sent on /health and after every control
// message.
type Status struct {
	Device   string           `json:"device"`
	Port     string           `json:"port"`
	Variant  string           `json:"variant"`
	UptimeS  float64          `json:"uptime_s"`
	Channels map[string]uint8 `json:"channels"`
	Error    string           `json:"error,omitempty"`
}

func (s *State) status(errMsg string) Status {
	levels := s.ctrl.Levels()
	return Status{
		Device:  s.Device,
		Port:    hexPort(s.Port),
		Variant: s.Variant,
		UptimeS: time.Since(s.startTime).Seconds(),
		Channels: map[string]uint8{
			nct6795d.Red.String():   levels[nct6795d.Red],
			nct6795d.Green.String(): levels[nct6795d.Green],
			nct6795d.Blue.String():  levels[nct6795d.Blue],
		},
		Error: errMsg,
	}
}

// controlMsg is one brightness change request. Channels absent from
// the message are left alone.
type controlMsg struct {
	Channel    string `json:"channel"`
	Brightness *uint8 `json:"brightness"`
	Resume     bool   `json:"resume,omitempty"`
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		errMsg := ""
		if err := s.apply(msg); err != nil {
			errMsg = err.Error()
			if errors.Is(err, superio.ErrBusy) {
				log.Warn().Err(err).Msg("bus busy, change dropped")
			}
		}
		s.mu.Lock()
		err = conn.WriteJSON(s.status(errMsg))
		s.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (s *State) apply(msg controlMsg) error {
	if msg.Resume {
		return s.ctrl.Resume()
	}
	ch, err := nct6795d.ParseChannel(msg.Channel)
	if err != nil {
		return err
	}
	if msg.Brightness == nil {
		return errors.New("ws: brightness missing")
	}
	return s.ctrl.SetBrightness(ch, *msg.Brightness)
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status(""))
}

func hexPort(p uint16) string { return fmt.Sprintf("%#x", p) }
