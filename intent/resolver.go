package intent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ldevreaux/gambit/board"
	"github.com/ldevreaux/gambit/match"
	"github.com/ldevreaux/gambit/model"
)

// DefaultMaxActions caps how many action IDs one plan may commit. Once
// reached, remaining intents are skipped silently — not errors.
const DefaultMaxActions = 6

// Resolver turns ordered intents into a Plan against the current legal
// action pool. TargetValues is the injectable threat table (lowercase name
// → weight 0–1); it is game content, so it lives in config.
type Resolver struct {
	Matcher      *match.Resolver
	MaxActions   int
	Strict       bool // if set, OK requires at least one committed ID
	TargetValues map[string]float64
}

func NewResolver(m *match.Resolver) *Resolver {
	if m == nil {
		m = match.NewResolver(nil)
	}
	return &Resolver{Matcher: m, MaxActions: DefaultMaxActions}
}

// state is the per-resolution bookkeeping. Committing an ID removes it from
// the pool; a unit that attacked is out of both pools for the turn, a unit
// that moved is out of the move pool only.
type state struct {
	a        *board.Analysis
	snap     *model.Snapshot
	plan     *Plan
	used     map[int]bool
	moved    map[int]bool
	attacked map[int]bool
	mana     int
}

// Resolve processes intents in priority order (ascending, ties by input
// order) and returns the plan. It never returns a Go error: every failure
// is a structured entry in Plan.Errors.
func (r *Resolver) Resolve(intents []Intent, a *board.Analysis) Plan {
	snap := a.Snapshot()
	st := &state{
		a:        a,
		snap:     snap,
		plan:     &Plan{},
		used:     make(map[int]bool),
		moved:    make(map[int]bool),
		attacked: make(map[int]bool),
		mana:     snap.Self.Mana,
	}

	order := make([]int, len(intents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return intents[order[x]].Priority < intents[order[y]].Priority
	})

	max := r.MaxActions
	if max <= 0 {
		max = DefaultMaxActions
	}

	for _, idx := range order {
		if len(st.plan.ActionIDs) >= max {
			break
		}
		it := intents[idx]

		var resErr *Error
		switch it.Verb {
		case VerbKill, VerbAttack, VerbPoke:
			resErr = r.offensive(st, idx, it)
		case VerbPosition, VerbScreen, VerbProtect:
			resErr = r.positional(st, idx, it)
		case VerbDeploy:
			resErr = r.deploy(st, idx, it)
		case VerbHold:
			st.explain("hold: %s", it.Subject)
		case VerbEndTurn:
			resErr = st.endTurn()
		default:
			resErr = &Error{Index: idx, Code: ErrUnknownVerb, Message: fmt.Sprintf("unhandled verb %s", it.Verb)}
		}
		if resErr != nil {
			st.plan.Errors = append(st.plan.Errors, *resErr)
		}
	}

	st.plan.ManaLeft = st.mana
	committed := len(st.plan.ActionIDs)
	st.plan.OK = committed > 0 || (!r.Strict && len(st.plan.Errors) == 0)
	return *st.plan
}

// offensive handles KILL/ATTACK/POKE: immediate attack first (exact target
// match wins outright), then a move-then-attack chain from the preview,
// then — when a target was named — a plain advance toward its zone.
func (r *Resolver) offensive(st *state, idx int, it Intent) *Error {
	subject := r.Matcher.Resolve(it.Subject, st.selfCandidates())
	if !subject.Matched {
		return notFound(idx, it.Subject, subject)
	}
	sid := subject.Candidate.ID

	heroTarget := isHeroMarker(it.Target)
	var targetID = -1
	var targetZone board.ZoneLabel
	if it.Target != "" && !heroTarget {
		if d, l, ok := board.ParseZone(it.Target); ok {
			targetZone = board.MakeZone(d, l)
		} else {
			v := r.Matcher.Resolve(it.Target, st.enemyCandidates())
			if !v.Matched {
				return notFound(idx, it.Target, v)
			}
			targetID = v.Candidate.ID
		}
	}

	// (a) Immediate legal attack.
	if avail := st.availAttacks(sid); len(avail) > 0 {
		if targetID >= 0 {
			for _, act := range avail {
				if act.UnitAttack.TargetUnitID != nil && *act.UnitAttack.TargetUnitID == targetID {
					st.commitAttack(act, "attack: %s -> %s", st.label(sid), st.label(targetID))
					return nil
				}
			}
		} else if heroTarget {
			for _, act := range avail {
				if act.IsHeroStrike() {
					st.commitAttack(act, "attack: %s -> enemy_hero", st.label(sid))
					return nil
				}
			}
		} else {
			best := avail[0]
			bestScore := r.targetScore(st, best)
			for _, act := range avail[1:] {
				if s := r.targetScore(st, act); s > bestScore {
					best, bestScore = act, s
				}
			}
			st.commitAttack(best, "attack: %s -> %s (score %.2f)", st.label(sid), st.attackTargetLabel(best), bestScore)
			return nil
		}
	}

	// (b) Move that unlocks the attack, chained for the execution engine.
	if !heroTarget {
		for _, row := range st.snap.TacticalPreview {
			if row.UnitID != sid || len(row.Attacks) == 0 {
				continue
			}
			preferred := row.Attacks[0].TargetUnitID
			if targetID >= 0 {
				found := false
				for _, pa := range row.Attacks {
					if pa.TargetUnitID == targetID {
						found = true
						preferred = targetID
						break
					}
				}
				if !found {
					continue
				}
			}
			mv := st.moveActionTo(sid, row.ToCell)
			if mv == nil {
				continue
			}
			st.commitMove(mv, "move_then_attack: %s via %d -> %s", st.label(sid), row.ToCell, st.label(preferred))
			st.plan.Chains = append(st.plan.Chains, ChainHint{AttackerUnitID: sid, PreferredTargetUnitID: preferred})
			return nil
		}
	}

	// (c) No attack reachable this turn; close distance instead of failing
	// silently when a target was named.
	if targetID >= 0 || targetZone != "" || heroTarget {
		zone := targetZone
		if heroTarget {
			zone = st.a.Zone(st.snap.Enemy.HeroCell)
		}
		if targetID >= 0 {
			if u, _ := st.snap.UnitByID(targetID); u != nil {
				zone = st.a.Zone(u.Cell)
			}
		}
		if mv := st.bestMoveToZone(sid, zone); mv != nil {
			st.commitMove(mv, "advance: %s toward %s", st.label(sid), zone)
			return nil
		}
	}

	return &Error{Index: idx, Code: ErrNoAttack, Message: fmt.Sprintf("no attack available for %s", it.Subject)}
}

// positional handles POSITION/SCREEN/PROTECT via directional zone scoring.
func (r *Resolver) positional(st *state, idx int, it Intent) *Error {
	subject := r.Matcher.Resolve(it.Subject, st.selfCandidates())
	if !subject.Matched {
		return notFound(idx, it.Subject, subject)
	}
	sid := subject.Candidate.ID

	zone := r.desiredZone(st, it)
	mv := st.bestMoveToZone(sid, zone)
	if mv == nil {
		return &Error{Index: idx, Code: ErrNoMove, Message: fmt.Sprintf("no legal move for %s", it.Subject)}
	}
	st.commitMove(mv, "%s: %s -> %s", strings.ToLower(it.Verb.String()), st.label(sid), zone)
	return nil
}

// deploy handles DEPLOY: subject must be Hand(CardName); the placement whose
// zone best matches the request wins, and mana is deducted on commit.
func (r *Resolver) deploy(st *state, idx int, it Intent) *Error {
	cardName, ok := ParseHandSubject(it.Subject)
	if !ok {
		return &Error{Index: idx, Code: ErrUnitNotFound, Message: fmt.Sprintf("deploy subject %q is not Hand(CardName)", it.Subject)}
	}
	verdict := r.Matcher.Resolve(cardName, st.handCandidates())
	if !verdict.Matched {
		return notFound(idx, cardName, verdict)
	}
	cardID := verdict.Candidate.ID

	cost := 0
	for _, c := range st.snap.Self.Hand {
		if c.CardID == cardID {
			cost = c.ManaCost
			break
		}
	}
	if cost > st.mana {
		return &Error{Index: idx, Code: ErrNoMana, Message: fmt.Sprintf("%s costs %d, %d mana left", cardName, cost, st.mana)}
	}

	zone := r.desiredZone(st, it)
	var best *model.Action
	bestDist := 0
	for i := range st.snap.LegalActions {
		act := &st.snap.LegalActions[i]
		if act.PlayCard == nil || act.PlayCard.CardID != cardID || st.used[act.ID] {
			continue
		}
		d := board.ZoneDistance(st.a.Zone(act.PlayCard.Cell), zone)
		if best == nil || d < bestDist {
			best, bestDist = act, d
		}
	}
	if best == nil {
		return &Error{Index: idx, Code: ErrNoMove, Message: fmt.Sprintf("no placement available for %s", cardName)}
	}

	st.commit(best, "deploy: %s at cell %d (%s)", cardName, best.PlayCard.Cell, zone)
	st.mana -= cost
	return nil
}

// endTurn commits the end-turn action unless attacks are still on the table.
func (st *state) endTurn() *Error {
	if st.attackStillAvailable() {
		st.explain("end_turn deferred: attacks remain")
		return nil
	}
	for i := range st.snap.LegalActions {
		act := &st.snap.LegalActions[i]
		if act.EndTurn && !st.used[act.ID] {
			st.commit(act, "end_turn")
			return nil
		}
	}
	st.explain("end_turn unavailable")
	return nil
}

// desiredZone picks the zone a positional/deploy intent is aiming at: an
// explicit zone label, a named entity's current zone, or a verb default.
func (r *Resolver) desiredZone(st *state, it Intent) board.ZoneLabel {
	if it.Target != "" {
		if d, l, ok := board.ParseZone(it.Target); ok {
			return board.MakeZone(d, l)
		}
		pool := append(st.selfCandidates(), st.enemyCandidates()...)
		if v := r.Matcher.Resolve(it.Target, pool); v.Matched {
			if u, _ := st.snap.UnitByID(v.Candidate.ID); u != nil {
				return st.a.Zone(u.Cell)
			}
		}
	}
	switch it.Verb {
	case VerbScreen:
		return board.MakeZone(2, 1) // front_center
	case VerbProtect:
		return st.a.Zone(st.snap.Self.HeroCell)
	case VerbDeploy:
		return board.MakeZone(0, 1) // back_center
	default:
		return board.MakeZone(1, 1) // mid_center
	}
}

// targetScore values one available attack: known threats, ranged targets
// and finishing blows score highest; a bare hero poke sits in the middle.
func (r *Resolver) targetScore(st *state, act *model.Action) float64 {
	if act.UnitAttack.TargetUnitID == nil {
		return 0.55
	}
	target, _ := st.snap.UnitByID(*act.UnitAttack.TargetUnitID)
	if target == nil {
		return 0
	}
	score := 0.4
	if w, ok := r.TargetValues[strings.ToLower(target.Name)]; ok {
		score += 0.3 * w
	}
	if attacker, _ := st.snap.UnitByID(act.UnitAttack.AttackerUnitID); attacker != nil && attacker.Atk >= target.HP {
		score += 0.2
	}
	if target.Range >= 3 || strings.EqualFold(target.Kind, "ranged") {
		score += 0.15
	}
	if target.HP <= 2 {
		score += 0.05
	}
	if score > 1 {
		score = 1
	}
	return score
}

// --- state helpers ---------------------------------------------------

func (st *state) commit(act *model.Action, format string, args ...any) {
	st.used[act.ID] = true
	st.plan.ActionIDs = append(st.plan.ActionIDs, act.ID)
	st.explain(format, args...)
}

func (st *state) commitAttack(act *model.Action, format string, args ...any) {
	st.commit(act, format, args...)
	uid := act.UnitAttack.AttackerUnitID
	st.attacked[uid] = true
	st.moved[uid] = true // attacking consumes the unit's whole turn
}

func (st *state) commitMove(act *model.Action, format string, args ...any) {
	st.commit(act, format, args...)
	st.moved[act.MoveUnit.UnitID] = true
}

func (st *state) explain(format string, args ...any) {
	st.plan.Explain = append(st.plan.Explain, fmt.Sprintf(format, args...))
}

func (st *state) availAttacks(unitID int) []*model.Action {
	if st.attacked[unitID] {
		return nil
	}
	var out []*model.Action
	for i := range st.snap.LegalActions {
		act := &st.snap.LegalActions[i]
		if act.UnitAttack != nil && act.UnitAttack.AttackerUnitID == unitID && !st.used[act.ID] {
			out = append(out, act)
		}
	}
	return out
}

func (st *state) moveActionTo(unitID, toCell int) *model.Action {
	if st.moved[unitID] {
		return nil
	}
	for i := range st.snap.LegalActions {
		act := &st.snap.LegalActions[i]
		if act.MoveUnit != nil && act.MoveUnit.UnitID == unitID && act.MoveUnit.ToCell == toCell && !st.used[act.ID] {
			return act
		}
	}
	return nil
}

func (st *state) bestMoveToZone(unitID int, zone board.ZoneLabel) *model.Action {
	if st.moved[unitID] {
		return nil
	}
	var best *model.Action
	bestDist := 0
	for i := range st.snap.LegalActions {
		act := &st.snap.LegalActions[i]
		if act.MoveUnit == nil || act.MoveUnit.UnitID != unitID || st.used[act.ID] {
			continue
		}
		d := board.ZoneDistance(st.a.Zone(act.MoveUnit.ToCell), zone)
		if best == nil || d < bestDist {
			best, bestDist = act, d
		}
	}
	return best
}

func (st *state) attackStillAvailable() bool {
	for i := range st.snap.LegalActions {
		act := &st.snap.LegalActions[i]
		if act.UnitAttack != nil && !st.used[act.ID] && !st.attacked[act.UnitAttack.AttackerUnitID] {
			return true
		}
	}
	return false
}

func (st *state) selfCandidates() []match.Candidate {
	return unitCandidates(st.snap.SelfUnits, st.a.Names.Self)
}

func (st *state) enemyCandidates() []match.Candidate {
	return unitCandidates(st.snap.EnemyUnits, st.a.Names.Enemy)
}

func (st *state) handCandidates() []match.Candidate {
	var out []match.Candidate
	for _, c := range st.snap.Self.Hand {
		out = append(out, match.Candidate{ID: c.CardID, Name: c.Name, Label: c.Name})
	}
	return out
}

func (st *state) label(unitID int) string {
	if l := st.a.Label(unitID); l != "" {
		return l
	}
	return fmt.Sprintf("unit(%d)", unitID)
}

func (st *state) attackTargetLabel(act *model.Action) string {
	if act.UnitAttack.TargetUnitID == nil {
		return "enemy_hero"
	}
	return st.label(*act.UnitAttack.TargetUnitID)
}

func unitCandidates(units []model.Unit, idx *board.SideIndex) []match.Candidate {
	var out []match.Candidate
	for _, u := range units {
		out = append(out, match.Candidate{ID: u.UnitID, Name: u.Name, Label: idx.Labels[u.UnitID]})
	}
	return out
}

func isHeroMarker(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enemy_hero", "enemy hero", "hero", "face":
		return true
	}
	return false
}

func notFound(idx int, query string, v match.Verdict) *Error {
	msg := fmt.Sprintf("%q not found", query)
	if len(v.Alternatives) > 0 {
		msg += fmt.Sprintf(" (candidates: %s)", strings.Join(v.Alternatives, ", "))
	}
	return &Error{Index: idx, Code: ErrUnitNotFound, Message: msg}
}
