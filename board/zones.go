package board

import "strings"

// ZoneLabel is a coarse {front,mid,back} x {left,center,right} tag derived
// from board geometry, used for abstract spatial intents ("screen front
// center"). "unknown" is returned whenever dimensions are missing.
type ZoneLabel string

const ZoneUnknown ZoneLabel = "unknown"

var depthNames = [3]string{"back", "mid", "front"}
var lateralNames = [3]string{"left", "center", "right"}

// MakeZone composes a label from band indices (depth 0=back..2=front,
// lateral 0=left..2=right).
func MakeZone(depth, lateral int) ZoneLabel {
	if depth < 0 || depth > 2 || lateral < 0 || lateral > 2 {
		return ZoneUnknown
	}
	return ZoneLabel(depthNames[depth] + "_" + lateralNames[lateral])
}

// ParseZone splits a label like "back_center" into band indices. Accepts
// either "_" or "-" separators and bare depth words ("front" means front
// center).
func ParseZone(s string) (depth, lateral int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	parts := strings.SplitN(s, "_", 2)

	depth = -1
	for i, n := range depthNames {
		if parts[0] == n {
			depth = i
		}
	}
	if depth < 0 {
		return 0, 0, false
	}
	lateral = 1 // bare depth defaults to center
	if len(parts) == 2 {
		lateral = -1
		for i, n := range lateralNames {
			if parts[1] == n {
				lateral = i
			}
		}
		if lateral < 0 {
			return 0, 0, false
		}
	}
	return depth, lateral, true
}

// ZoneDistance scores how far apart two labels are. The directional axis
// is double-weighted: being in the wrong rank matters more than being in
// the wrong file. Unknown labels are maximally distant.
func ZoneDistance(a, b ZoneLabel) int {
	ad, al, aok := ParseZone(string(a))
	bd, bl, bok := ParseZone(string(b))
	if !aok || !bok {
		return 2*2 + 2 + 1
	}
	return 2*abs(ad-bd) + abs(al-bl)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Zone classifies a cell relative to both heroes' rows and the forward
// axis. Stable: same cell + same analysis always yields the same label.
func (a *Analysis) Zone(cell int) ZoneLabel {
	if a.Width <= 0 || cell < 0 {
		return ZoneUnknown
	}
	row := cell / a.Width
	col := cell % a.Width

	depth := a.depthBand(row)
	lateral := tercile(col, a.Width)
	return MakeZone(depth, lateral)
}

// depthBand places a row on the back→front axis running from our hero's
// row toward the enemy hero's row. When the heroes share a row the forward
// axis is degenerate and everything is mid-depth.
func (a *Analysis) depthBand(row int) int {
	selfRow := a.snap.Self.HeroCell / a.Width
	enemyRow := a.snap.Enemy.HeroCell / a.Width
	span := enemyRow - selfRow
	if span == 0 {
		return 1
	}
	t := float64(row-selfRow) / float64(span)
	switch {
	case t < 1.0/3.0:
		return 0
	case t < 2.0/3.0:
		return 1
	default:
		return 2
	}
}

func tercile(col, width int) int {
	if width <= 0 {
		return 1
	}
	band := col * 3 / width
	if band > 2 {
		band = 2
	}
	return band
}
