package board

import (
	"strings"

	"github.com/ldevreaux/gambit/model"
)

// Role is a coarse battlefield function guessed from unit stats. It feeds
// the battle report so the intent source can reason about "the tank" or
// "the sniper" without knowing exact card identities.
type Role string

const (
	RoleHero    Role = "hero"
	RoleSniper  Role = "sniper"
	RoleTank    Role = "tank"
	RoleSupport Role = "support"
	RoleGrunt   Role = "grunt"
)

const tankHPFloor = 8

var supportKeywords = []string{"priest", "healer", "mender", "oracle", "support", "herald"}

// classifyRole applies cheap heuristics in fixed order. Units sitting on
// their side's hero cell are the hero token itself.
func classifyRole(u model.Unit, heroCell int) Role {
	switch {
	case u.Cell == heroCell:
		return RoleHero
	case u.Range >= 3 || strings.EqualFold(u.Kind, "ranged"):
		return RoleSniper
	case u.HP >= tankHPFloor && u.Range <= 1:
		return RoleTank
	case hasSupportKeyword(u.Name):
		return RoleSupport
	default:
		return RoleGrunt
	}
}

func hasSupportKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range supportKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
