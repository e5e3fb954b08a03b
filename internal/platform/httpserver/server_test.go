package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	roomengine "quorum/contexts/group-decision/room-engine"
	roomhttp "quorum/contexts/group-decision/room-engine/transport/http"
)

func newTestServer() *Server {
	return New(roomengine.NewInMemoryModule(slog.Default()), slog.Default(), ":0")
}

func doRequest(t *testing.T, server *Server, method string, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rr.Body.String())
	}
	return out
}

func TestRoutesRequireUserHeader(t *testing.T) {
	server := newTestServer()
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/rooms"},
		{http.MethodPost, "/api/rooms/join"},
		{http.MethodGet, "/api/rooms"},
		{http.MethodGet, "/api/rooms/room-1"},
		{http.MethodDelete, "/api/rooms/room-1"},
		{http.MethodPost, "/api/rooms/room-1/options"},
		{http.MethodPost, "/api/rooms/room-1/voting/open"},
		{http.MethodPost, "/api/rooms/room-1/voting/close"},
		{http.MethodPost, "/api/rooms/room-1/vote"},
		{http.MethodGet, "/api/rooms/room-1/results"},
		{http.MethodPost, "/api/rooms/room-1/tiebreaker"},
	}

	for _, route := range routes {
		rr := doRequest(t, server, route.method, route.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d body=%s", route.method, route.path, rr.Code, rr.Body.String())
		}
	}
}

func TestCreateRoomRejectsInvalidJSON(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader([]byte(`{"title":`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "alice")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestJoinRoomUnknownCode(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/api/rooms/join", "bob", roomhttp.JoinRoomRequest{Code: "NOPE99"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRoomLifecycleEndToEnd(t *testing.T) {
	server := newTestServer()

	rr := doRequest(t, server, http.MethodPost, "/api/rooms", "alice", roomhttp.CreateRoomRequest{Title: "Friday dinner"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[roomhttp.CreateRoomResponse](t, rr)
	if created.InvitePath != "/join/"+created.Code {
		t.Fatalf("unexpected invite path %s for code %s", created.InvitePath, created.Code)
	}
	roomPath := "/api/rooms/" + created.RoomID

	rr = doRequest(t, server, http.MethodPost, "/api/rooms/join", "bob", roomhttp.JoinRoomRequest{Code: created.Code})
	if rr.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, http.MethodPost, roomPath+"/options", "alice", roomhttp.SubmitOptionRequest{Text: "Pizza"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("option 1: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	pizza := decode[roomhttp.OptionResponse](t, rr)

	rr = doRequest(t, server, http.MethodPost, roomPath+"/options", "bob", roomhttp.SubmitOptionRequest{Text: "Sushi"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("option 2: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	sushi := decode[roomhttp.OptionResponse](t, rr)

	rr = doRequest(t, server, http.MethodPost, roomPath+"/options", "mallory", roomhttp.SubmitOptionRequest{Text: "Tacos"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-member option: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, http.MethodPost, roomPath+"/voting/open", "bob", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-creator open: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, server, http.MethodPost, roomPath+"/voting/open", "alice", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, http.MethodGet, roomPath+"/results", "alice", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("early results: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, http.MethodPost, roomPath+"/vote", "alice", roomhttp.CastVoteRequest{OptionID: pizza.OptionID})
	if rr.Code != http.StatusCreated {
		t.Fatalf("alice vote: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, server, http.MethodPost, roomPath+"/vote", "bob", roomhttp.CastVoteRequest{OptionID: sushi.OptionID})
	if rr.Code != http.StatusCreated {
		t.Fatalf("bob vote: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, server, http.MethodPost, roomPath+"/vote", "bob", roomhttp.CastVoteRequest{OptionID: pizza.OptionID})
	if rr.Code != http.StatusConflict {
		t.Fatalf("second vote: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, http.MethodPost, roomPath+"/voting/close", "alice", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, http.MethodGet, roomPath+"/results", "bob", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("results: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	results := decode[roomhttp.ResultsResponse](t, rr)
	if len(results.Results) != 2 {
		t.Fatalf("expected 2 tally entries, got %+v", results.Results)
	}
	for _, item := range results.Results {
		if item.Votes != 1 {
			t.Fatalf("expected one vote per option, got %+v", item)
		}
	}

	rr = doRequest(t, server, http.MethodPost, roomPath+"/tiebreaker", "alice", roomhttp.TiebreakerRequest{})
	if rr.Code != http.StatusOK {
		t.Fatalf("tiebreaker: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	tiebreak := decode[roomhttp.TiebreakerResponse](t, rr)
	if tiebreak.Winner.OptionID != pizza.OptionID && tiebreak.Winner.OptionID != sushi.OptionID {
		t.Fatalf("winner outside the tied set: %+v", tiebreak.Winner)
	}
	if tiebreak.Method != "random" {
		t.Fatalf("expected default method, got %s", tiebreak.Method)
	}

	rr = doRequest(t, server, http.MethodGet, roomPath, "bob", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	detail := decode[roomhttp.RoomDetailResponse](t, rr)
	if detail.Room.State != "resolved" {
		t.Fatalf("expected resolved room, got %s", detail.Room.State)
	}
	if detail.Room.FinalOption != tiebreak.Winner.Text {
		t.Fatalf("expected final option %q, got %q", tiebreak.Winner.Text, detail.Room.FinalOption)
	}

	rr = doRequest(t, server, http.MethodGet, "/api/rooms", "bob", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	listing := decode[roomhttp.RoomListResponse](t, rr)
	if len(listing.Items) != 1 || listing.Items[0].RoomID != created.RoomID {
		t.Fatalf("unexpected listing %+v", listing.Items)
	}

	rr = doRequest(t, server, http.MethodDelete, roomPath, "bob", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-creator delete: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, server, http.MethodDelete, roomPath, "alice", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, server, http.MethodGet, roomPath, "alice", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("deleted room: expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTiebreakerWithoutTie(t *testing.T) {
	server := newTestServer()

	rr := doRequest(t, server, http.MethodPost, "/api/rooms", "alice", roomhttp.CreateRoomRequest{Title: "Lunch"})
	created := decode[roomhttp.CreateRoomResponse](t, rr)
	roomPath := "/api/rooms/" + created.RoomID

	rr = doRequest(t, server, http.MethodPost, roomPath+"/options", "alice", roomhttp.SubmitOptionRequest{Text: "Ramen"})
	option := decode[roomhttp.OptionResponse](t, rr)

	doRequest(t, server, http.MethodPost, roomPath+"/voting/open", "alice", nil)
	doRequest(t, server, http.MethodPost, roomPath+"/vote", "alice", roomhttp.CastVoteRequest{OptionID: option.OptionID})
	doRequest(t, server, http.MethodPost, roomPath+"/voting/close", "alice", nil)

	rr = doRequest(t, server, http.MethodPost, roomPath+"/tiebreaker", "alice", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 without a tie, got %d body=%s", rr.Code, rr.Body.String())
	}
	errResp := decode[roomhttp.ErrorResponse](t, rr)
	if errResp.Code != "no_tie" {
		t.Fatalf("expected no_tie, got %s", errResp.Code)
	}
}
