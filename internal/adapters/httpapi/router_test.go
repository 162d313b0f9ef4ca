package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nvoss/codeshare/internal/app"
	"github.com/nvoss/codeshare/internal/config"
)

func testRouter(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Mode:         "release",
		StaticPath:   t.TempDir(),
		ReadLimit:    65536,
		PingPeriod:   54 * time.Second,
		WriteTimeout: 5 * time.Second,
		JoinLimit:    16,
		JoinInterval: 10 * time.Second,
		Secret:       "test-secret",
	}
	srv := httptest.NewServer(SetupRouter(context.Background(), cfg, app.NewRelay()))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := testRouter(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestCreateRoomHandsOutUUID(t *testing.T) {
	srv := testRouter(t)
	resp, err := http.Post(srv.URL+"/api/rooms/create", "application/json", nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room status = %d", resp.StatusCode)
	}
	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(body.RoomID); err != nil {
		t.Fatalf("roomId %q is not a uuid: %v", body.RoomID, err)
	}
}

func TestListRoomsEmpty(t *testing.T) {
	srv := testRouter(t)
	resp, err := http.Get(srv.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list rooms status = %d", resp.StatusCode)
	}
	var body struct {
		Rooms []app.RoomInfo `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rooms) != 0 {
		t.Fatalf("rooms = %v, want none", body.Rooms)
	}
}
