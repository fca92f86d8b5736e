package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case GameState:
		o.printGameState(v)
	case History:
		o.printHistory(v)
	case Stats:
		o.printStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// RoomConfig response type
type RoomConfig struct {
	MaxPlayers      int    `json:"maxPlayers"`
	IsPrivate       bool   `json:"isPrivate"`
	RoomName        string `json:"roomName,omitempty"`
	GameMode        string `json:"gameMode"`
	AllowSpectators bool   `json:"allowSpectators"`
}

// Room response type
type Room struct {
	ID         string     `json:"id"`
	HostID     string     `json:"hostId"`
	Players    []Player   `json:"players"`
	Spectators []Player   `json:"spectators,omitempty"`
	Config     RoomConfig `json:"config"`
	Phase      string     `json:"phase"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// PlayerGameState response type
type PlayerGameState struct {
	HandTileCount int  `json:"handTileCount"`
	IsReady       bool `json:"isReady"`
	Position      int  `json:"position"`
	Score         int  `json:"score"`
	IsDealer      bool `json:"isDealer"`
	IsActive      bool `json:"isActive"`
}

// SharedState response type
type SharedState struct {
	DiscardPile        []string `json:"discardPile"`
	WallTilesRemaining int      `json:"wallTilesRemaining"`
	CurrentPlayer      string   `json:"currentPlayer,omitempty"`
}

// GameState response type
type GameState struct {
	RoomID          string                     `json:"roomId"`
	Phase           string                     `json:"phase"`
	CurrentRound    int                        `json:"currentRound"`
	CurrentWind     string                     `json:"currentWind"`
	DealerPosition  int                        `json:"dealerPosition"`
	CharlestonPhase string                     `json:"charlestonPhase,omitempty"`
	PlayerStates    map[string]PlayerGameState `json:"playerStates"`
	Shared          SharedState                `json:"sharedState"`
}

// Mutation response type
type Mutation struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Timestamp string `json:"timestamp"`
}

// History response type
type History struct {
	RoomID    string     `json:"roomId"`
	Mutations []Mutation `json:"mutations"`
}

// Stats response type
type Stats struct {
	TotalRooms   int            `json:"totalRooms"`
	TotalPlayers int            `json:"totalPlayers"`
	RoomsByPhase map[string]int `json:"roomsByPhase"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.ID)
	if r.Config.RoomName != "" {
		fmt.Printf("Name: %s\n", r.Config.RoomName)
	}
	fmt.Printf("Phase: %s\n", r.Phase)
	fmt.Printf("Mode: %s\n", r.Config.GameMode)
	fmt.Printf("Players (%d/%d):\n", len(r.Players), r.Config.MaxPlayers)
	for _, p := range r.Players {
		hostStr := ""
		if p.IsHost {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.Name, p.ID, hostStr)
	}
	if len(r.Spectators) > 0 {
		fmt.Printf("Spectators (%d):\n", len(r.Spectators))
		for _, s := range r.Spectators {
			fmt.Printf("  - %s (%s)\n", s.Name, s.ID)
		}
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No public rooms")
		return
	}
	for _, r := range l.Rooms {
		name := r.Config.RoomName
		if name == "" {
			name = "-"
		}
		fmt.Printf("%s  %-20s %s  %d/%d players\n",
			r.ID, name, r.Phase, len(r.Players), r.Config.MaxPlayers)
	}
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Room: %s\n", g.RoomID)
	fmt.Printf("Phase: %s\n", g.Phase)
	if g.CharlestonPhase != "" {
		fmt.Printf("Charleston: %s\n", g.CharlestonPhase)
	}
	fmt.Printf("Round: %d (%s)\n", g.CurrentRound, g.CurrentWind)
	fmt.Printf("Wall: %d tiles\n", g.Shared.WallTilesRemaining)
	if g.Shared.CurrentPlayer != "" {
		fmt.Printf("Current Player: %s\n", g.Shared.CurrentPlayer)
	}
	if len(g.Shared.DiscardPile) > 0 {
		fmt.Printf("Discards: %s\n", strings.Join(g.Shared.DiscardPile, " "))
	}

	if len(g.PlayerStates) > 0 {
		ids := make([]string, 0, len(g.PlayerStates))
		for id := range g.PlayerStates {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Println("Players:")
		for _, id := range ids {
			ps := g.PlayerStates[id]
			dealerStr := ""
			if ps.IsDealer {
				dealerStr = " [dealer]"
			}
			fmt.Printf("  seat %d: %s  tiles=%d score=%d%s\n",
				ps.Position, id, ps.HandTileCount, ps.Score, dealerStr)
		}
	}
}

func (o *Output) printHistory(h History) {
	fmt.Printf("Room: %s (%d mutations)\n", h.RoomID, len(h.Mutations))
	for _, m := range h.Mutations {
		fmt.Printf("  %s  %-14s %s\n", m.Timestamp, m.Type, m.PlayerID)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Rooms: %d\n", s.TotalRooms)
	fmt.Printf("Players: %d\n", s.TotalPlayers)
	if len(s.RoomsByPhase) > 0 {
		phases := make([]string, 0, len(s.RoomsByPhase))
		for phase := range s.RoomsByPhase {
			phases = append(phases, phase)
		}
		sort.Strings(phases)

		fmt.Println("By phase:")
		for _, phase := range phases {
			fmt.Printf("  %s: %d\n", phase, s.RoomsByPhase[phase])
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
