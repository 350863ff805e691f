// Package obs is the scene-control adapter. It speaks the obs-websocket
// v4 protocol to create, play and tear down media sources for sound
// effects.
package obs

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lxzan/gws"
	log "github.com/sirupsen/logrus"
)

const (
	// pollInterval is the pause between remote-state polls while
	// waiting on an active source or on playback to end.
	pollInterval = time.Second
	// DefaultTimeout bounds each polling loop and each remote call so
	// a stuck remote state cannot stall an sfx invocation forever.
	DefaultTimeout = 60 * time.Second
)

// errRequestRejected marks a response the remote answered with a
// non-ok status, as opposed to a transport failure or timeout.
var errRequestRejected = errors.New("request rejected")

type response map[string]any

type Client struct {
	addr     string
	password string
	timeout  time.Duration
	clock    clockwork.Clock

	mu      sync.Mutex
	conn    *gws.Conn
	pending map[string]chan response
	nextID  uint64
}

func NewClient(host string, port int, password string, clock clockwork.Clock) *Client {
	return &Client{
		addr:     fmt.Sprintf("ws://%s:%d", host, port),
		password: password,
		timeout:  DefaultTimeout,
		clock:    clock,
		pending:  make(map[string]chan response),
	}
}

// Connect opens the websocket and authenticates when the remote
// requires it.
func (c *Client) Connect() error {
	conn, _, err := gws.NewClient(&handler{client: c}, &gws.ClientOption{Addr: c.addr})
	if err != nil {
		return fmt.Errorf("error connecting to obs websocket: %w", err)
	}
	c.conn = conn
	go conn.ReadLoop()

	resp, err := c.call("GetAuthRequired", nil)
	if err != nil {
		return fmt.Errorf("error checking auth requirement: %w", err)
	}

	if required, _ := resp["authRequired"].(bool); required {
		challenge, _ := resp["challenge"].(string)
		salt, _ := resp["salt"].(string)

		_, err = c.call("Authenticate", map[string]any{
			"auth": challengeResponse(c.password, salt, challenge),
		})
		if err != nil {
			return fmt.Errorf("error authenticating: %w", err)
		}
	}

	return nil
}

// PlaySound creates a hidden ffmpeg source for the file in the scene,
// sets volume and monitoring, makes it visible, waits until playback
// ends and removes the source. If the same asset is still playing from
// an earlier invocation, it waits for that playback first.
func (c *Client) PlaySound(path string, volume float64, scene string) error {
	source := "sound-" + path

	if err := c.waitUntilInactive(source); err != nil {
		return err
	}

	_, err := c.call("CreateSource", map[string]any{
		"sourceName": source,
		"sourceKind": "ffmpeg_source",
		"sceneName":  scene,
		"sourceSettings": map[string]any{
			"local_file": path,
		},
		"setVisible": false,
	})
	if err != nil {
		return fmt.Errorf("error creating source: %w", err)
	}

	_, err = c.call("SetVolume", map[string]any{"source": source, "volume": volume})
	if err != nil {
		return fmt.Errorf("error setting volume: %w", err)
	}

	// monitorOnly so the streamer hears the sound as well
	_, err = c.call("SetAudioMonitorType", map[string]any{"sourceName": source, "monitorType": "monitorOnly"})
	if err != nil {
		return fmt.Errorf("error setting monitor type: %w", err)
	}

	_, err = c.call("SetSceneItemProperties", map[string]any{
		"scene-name": scene,
		"item":       map[string]any{"name": source},
		"visible":    true,
	})
	if err != nil {
		return fmt.Errorf("error showing source: %w", err)
	}

	if err := c.waitUntilEnded(source); err != nil {
		return err
	}

	_, err = c.call("DeleteSceneItem", map[string]any{
		"scene": scene,
		"item":  map[string]any{"name": source},
	})
	if err != nil {
		return fmt.Errorf("error deleting source: %w", err)
	}

	return nil
}

// waitUntilInactive polls until no source with this name exists. A
// rejected lookup means the source is gone, which is the ready state.
func (c *Client) waitUntilInactive(source string) error {
	deadline := c.clock.Now().Add(c.timeout)
	for {
		_, err := c.call("GetMediaState", map[string]any{"sourceName": source})
		if errors.Is(err, errRequestRejected) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.clock.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for previous playback of %s", source)
		}
		c.clock.Sleep(pollInterval)
	}
}

func (c *Client) waitUntilEnded(source string) error {
	deadline := c.clock.Now().Add(c.timeout)
	for {
		resp, err := c.call("GetMediaState", map[string]any{"sourceName": source})
		if err != nil {
			return fmt.Errorf("error getting media state: %w", err)
		}
		if state, _ := resp["mediaState"].(string); state == "ended" {
			return nil
		}
		if c.clock.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for playback of %s to end", source)
		}
		c.clock.Sleep(pollInterval)
	}
}

// call sends one request and waits for the matching response by
// message-id.
func (c *Client) call(requestType string, params map[string]any) (response, error) {
	payload := map[string]any{
		"request-type": requestType,
	}
	for key, value := range params {
		payload[key] = value
	}

	c.mu.Lock()
	c.nextID++
	id := strconv.FormatUint(c.nextID, 10)
	payload["message-id"] = id
	ch := make(chan response, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}
	if err := c.conn.WriteString(string(data)); err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	select {
	case resp := <-ch:
		if status, _ := resp["status"].(string); status != "ok" {
			message, _ := resp["error"].(string)
			return nil, fmt.Errorf("%s: %s: %w", requestType, message, errRequestRejected)
		}
		return resp, nil
	case <-c.clock.After(c.timeout):
		return nil, fmt.Errorf("%s timed out", requestType)
	}
}

func (c *Client) deliver(resp response) {
	id, _ := resp["message-id"].(string)
	if id == "" {
		// update-type events are not tracked
		return
	}

	c.mu.Lock()
	ch := c.pending[id]
	c.mu.Unlock()

	if ch != nil {
		ch <- resp
	}
}

// challengeResponse computes the obs-websocket v4 auth response:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func challengeResponse(password, salt, challenge string) string {
	secretHash := sha256.Sum256([]byte(password + salt))
	secret := base64.StdEncoding.EncodeToString(secretHash[:])

	responseHash := sha256.Sum256([]byte(secret + challenge))
	return base64.StdEncoding.EncodeToString(responseHash[:])
}

type handler struct {
	client *Client
}

func (h *handler) OnOpen(conn *gws.Conn) {
	log.Info("OBS websocket connection opened")
}

func (h *handler) OnClose(conn *gws.Conn, err error) {
	log.Infof("OBS websocket connection closed: %v", err)
}

func (h *handler) OnPing(conn *gws.Conn, payload []byte) {
	conn.WritePong(payload)
}

func (h *handler) OnPong(conn *gws.Conn, payload []byte) {
}

func (h *handler) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()

	resp := response{}
	if err := json.Unmarshal(message.Data.Bytes(), &resp); err != nil {
		log.Errorf("error decoding obs message: %v", err)
		return
	}

	h.client.deliver(resp)
}
