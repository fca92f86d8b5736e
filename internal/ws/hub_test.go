package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
}

// connect builds a client without a live socket and registers it.
// Churn is applied directly rather than through Run so tests stay
// synchronous.
func (s *HubSuite) connect(playerID model.PlayerID) *Client {
	client := &Client{
		id:       uuid.NewString(),
		PlayerID: playerID,
		send:     make(chan []byte, sendQueueSize),
		hub:      s.hub,
	}
	s.hub.addClient(client)
	return client
}

// receive pops one queued message, or nil when the queue is empty
func (s *HubSuite) receive(c *Client) *ServerMessage {
	select {
	case data := <-c.send:
		var msg ServerMessage
		s.Require().NoError(json.Unmarshal(data, &msg))
		return &msg
	default:
		return nil
	}
}

func (s *HubSuite) TestBroadcastRoomReachesSubscribers() {
	a := s.connect("p1")
	b := s.connect("p2")
	outsider := s.connect("p3")
	s.hub.Subscribe(a, "ROOM22")
	s.hub.Subscribe(b, "ROOM22")

	s.hub.BroadcastRoom("ROOM22", ServerMessage{Type: "player-joined", RoomID: "ROOM22"})

	for _, c := range []*Client{a, b} {
		msg := s.receive(c)
		s.Require().NotNil(msg)
		s.Equal("player-joined", msg.Type)
		s.Equal(model.RoomID("ROOM22"), msg.RoomID)
	}
	s.Nil(s.receive(outsider))
}

func (s *HubSuite) TestBroadcastRoomExceptSkipsOriginator() {
	a := s.connect("p1")
	b := s.connect("p2")
	s.hub.Subscribe(a, "ROOM22")
	s.hub.Subscribe(b, "ROOM22")

	s.hub.BroadcastRoomExcept("ROOM22", ServerMessage{Type: "game-state-changed"}, "p1")

	s.Nil(s.receive(a))
	s.NotNil(s.receive(b))
}

func (s *HubSuite) TestSendToPlayerTargetsOneConnection() {
	a := s.connect("p1")
	b := s.connect("p2")

	s.hub.SendToPlayer("p2", ServerMessage{Type: "charleston-tile-exchange"})

	s.Nil(s.receive(a))
	msg := s.receive(b)
	s.Require().NotNil(msg)
	s.Equal("charleston-tile-exchange", msg.Type)
}

func (s *HubSuite) TestSendToUnknownPlayerIsNoop() {
	a := s.connect("p1")

	s.hub.SendToPlayer("ghost", ServerMessage{Type: "pong"})

	s.Nil(s.receive(a))
}

func (s *HubSuite) TestBroadcastAllIgnoresSubscriptions() {
	a := s.connect("p1")
	b := s.connect("p2")
	s.hub.Subscribe(a, "ROOM22")

	s.hub.BroadcastAll(ServerMessage{Type: "room-list-updated"})

	s.NotNil(s.receive(a))
	s.NotNil(s.receive(b))
}

func (s *HubSuite) TestUnsubscribeStopsDelivery() {
	a := s.connect("p1")
	s.hub.Subscribe(a, "ROOM22")
	s.hub.Unsubscribe(a, "ROOM22")

	s.hub.BroadcastRoom("ROOM22", ServerMessage{Type: "player-joined"})

	s.Nil(s.receive(a))
	s.Empty(s.hub.RoomSubscribers("ROOM22"))
}

func (s *HubSuite) TestDropRoomClearsSubscribers() {
	a := s.connect("p1")
	b := s.connect("p2")
	s.hub.Subscribe(a, "ROOM22")
	s.hub.Subscribe(b, "ROOM22")

	s.hub.DropRoom("ROOM22")

	s.Empty(s.hub.RoomSubscribers("ROOM22"))
	s.hub.BroadcastRoom("ROOM22", ServerMessage{Type: "player-joined"})
	s.Nil(s.receive(a))
}

func (s *HubSuite) TestRoomSubscribers() {
	a := s.connect("p1")
	b := s.connect("p2")
	s.hub.Subscribe(a, "ROOM22")
	s.hub.Subscribe(b, "ROOM22")

	ids := s.hub.RoomSubscribers("ROOM22")
	s.ElementsMatch([]model.PlayerID{"p1", "p2"}, ids)
}

func (s *HubSuite) TestRemoveClientSurfacesDisconnect() {
	a := s.connect("p1")
	s.hub.Subscribe(a, "ROOM22")

	s.hub.removeClient(a)

	select {
	case gone := <-s.hub.Disconnects:
		s.Equal(a, gone)
	default:
		s.Fail("disconnect not surfaced")
	}
	s.Empty(s.hub.RoomSubscribers("ROOM22"))

	// Send queue is closed so the write pump drains out
	_, open := <-a.send
	s.False(open)
}

func (s *HubSuite) TestRemoveClientTwiceIsNoop() {
	a := s.connect("p1")

	s.hub.removeClient(a)
	<-s.hub.Disconnects
	s.hub.removeClient(a)

	select {
	case <-s.hub.Disconnects:
		s.Fail("second removal must not cascade again")
	default:
	}
}

func (s *HubSuite) TestReconnectReplacesPlayerRoute() {
	stale := s.connect("p1")
	fresh := s.connect("p1")

	s.hub.SendToPlayer("p1", ServerMessage{Type: "pong"})

	s.NotNil(s.receive(fresh))
	s.Nil(s.receive(stale))

	// Removing the stale connection must not unroute the fresh one
	s.hub.removeClient(stale)
	<-s.hub.Disconnects
	s.hub.SendToPlayer("p1", ServerMessage{Type: "pong"})
	s.NotNil(s.receive(fresh))
}

func (s *HubSuite) TestSlowClientDropsInsteadOfBlocking() {
	a := s.connect("p1")
	s.hub.Subscribe(a, "ROOM22")

	for i := 0; i < sendQueueSize; i++ {
		a.send <- []byte("{}")
	}

	// Queue is full; the broadcast must return rather than block
	s.hub.BroadcastRoom("ROOM22", ServerMessage{Type: "player-joined"})
	s.Len(a.send, sendQueueSize)
}
