package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// Team identifies one of the two sides of a match.
type Team int

const (
	TeamBlue Team = iota
	TeamOrange
)

func (t Team) String() string {
	if t == TeamOrange {
		return "orange"
	}
	return "blue"
}

// Opposite side of the team
func (t Team) Other() Team {
	if t == TeamBlue {
		return TeamOrange
	}
	return TeamBlue
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

type Rotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// PhysicsObject is the pose of a ball or a car.
type PhysicsObject struct {
	Position        Vec3     `json:"position"`
	LinearVelocity  Vec3     `json:"linear_velocity"`
	AngularVelocity Vec3     `json:"angular_velocity"`
	Rotation        Rotation `json:"rotation"`
}

// Match stat counters of a single player.
type PlayerStats struct {
	Goals   int `json:"goals"`
	Saves   int `json:"saves"`
	Shots   int `json:"shots"`
	Touches int `json:"touches"`
}

type PlayerData struct {
	CarID       int           `json:"car_id"`
	Team        Team          `json:"team"`
	Car         PhysicsObject `json:"car"`
	Boost       float64       `json:"boost"`
	OnGround    bool          `json:"on_ground"`
	BallTouched bool          `json:"ball_touched"`
	Demolished  bool          `json:"demolished"`
	Stats       PlayerStats   `json:"stats"`
}

// GameState is the full observable state of a session at one tick.
type GameState struct {
	Tick        int           `json:"tick"`
	BlueScore   int           `json:"blue_score"`
	OrangeScore int           `json:"orange_score"`
	Ball        PhysicsObject `json:"ball"`
	Players     []PlayerData  `json:"players"`
	// car id of the last ball touch, -1 when untouched
	LastTouch int `json:"last_touch"`
}

// TeamPlayers filters the players of one team, in car id order.
func (g *GameState) TeamPlayers(t Team) []PlayerData {
	players := make([]PlayerData, 0)
	for _, p := range g.Players {
		if p.Team == t {
			players = append(players, p)
		}
	}
	return players
}

// Player looks up a player by car id.
func (g *GameState) Player(carID int) (PlayerData, bool) {
	for _, p := range g.Players {
		if p.CarID == carID {
			return p, true
		}
	}
	return PlayerData{}, false
}

// Score of the given team
func (g *GameState) Score(t Team) int {
	if t == TeamOrange {
		return g.OrangeScore
	}
	return g.BlueScore
}

func (g *GameState) Copy() *GameState {
	players := make([]PlayerData, len(g.Players))
	copy(players, g.Players)
	return &GameState{
		Tick:        g.Tick,
		BlueScore:   g.BlueScore,
		OrangeScore: g.OrangeScore,
		Ball:        g.Ball,
		Players:     players,
		LastTouch:   g.LastTouch,
	}
}

// Deterministic hash of the state. The struct marshals with a fixed field
// order and the player slice keeps the spawn order, so marshaling is stable.
func (g *GameState) Hash() string {
	data, err := json.Marshal(g)
	if err != nil {
		panic(fmt.Sprintf("marshaling game state: %v", err))
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
